package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/loginflow-systems/login-etl/internal/dedup"
	"github.com/loginflow-systems/login-etl/internal/logging"
	"github.com/loginflow-systems/login-etl/internal/masker"
	"github.com/loginflow-systems/login-etl/internal/pipeline"
	"github.com/loginflow-systems/login-etl/internal/queue"
	"github.com/loginflow-systems/login-etl/internal/repository"
	"github.com/loginflow-systems/login-etl/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one ETL run against the configured queue and database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runETL(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runETL(parent context.Context) error {
	log := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	connString := cfg.Database.ConnString()

	// Run database migrations before touching the sink.
	m, err := migrate.New("file://"+cfg.Database.MigrationsPath, connString)
	if err != nil {
		return fmt.Errorf("initialize migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	repo, err := repository.NewPostgresRepository(ctx, connString)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer repo.Close()

	source, err := queue.NewSource(ctx, queueConfig())
	if err != nil {
		return fmt.Errorf("connect to queue: %w", err)
	}
	defer source.Close()

	seen, cleanup, err := newSeenSet(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.ErrorContext(ctx, "metrics server error", "error", err)
			}
		}()
	}

	piiFields := cfg.Pipeline.PIIFields
	if len(piiFields) == 0 {
		piiFields = masker.DefaultFields()
	}

	pipe := pipeline.New(masker.New(piiFields), seen, repo)
	runner := service.NewRunner(source, pipe, log, cfg.Queue.BatchSize)

	log.InfoContext(ctx, "run starting",
		"stream", cfg.Queue.Stream,
		"subject", cfg.Queue.Subject,
		"dedup_backend", cfg.Dedup.Backend,
	)

	stats, runErr := runner.Run(ctx)
	printSummary(runID, stats, runErr)
	return runErr
}

func queueConfig() queue.Config {
	qc := queue.DefaultConfig()
	qc.URL = cfg.Queue.URL
	qc.Stream = cfg.Queue.Stream
	qc.Subject = cfg.Queue.Subject
	qc.Consumer = cfg.Queue.Consumer
	qc.FetchTimeout = cfg.Queue.FetchTimeout
	qc.AckWait = cfg.Queue.AckWait
	qc.MaxDeliver = cfg.Queue.MaxDeliver
	return qc
}

func newSeenSet(ctx context.Context) (dedup.Set, func(), error) {
	switch cfg.Dedup.Backend {
	case "", "memory":
		return dedup.NewMemorySet(), func() {}, nil
	case "redis":
		client, err := dedup.DialRedis(ctx, dedup.RedisConfig{
			Addr:     cfg.Dedup.Addr,
			Password: cfg.Dedup.Password,
			DB:       cfg.Dedup.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		set := dedup.NewRedisSet(client, cfg.Dedup.Key, cfg.Dedup.TTL)
		return set, func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown dedup backend %q", cfg.Dedup.Backend)
	}
}

func printSummary(runID string, stats service.Stats, runErr error) {
	bold := color.New(color.Bold)
	bold.Printf("run %s finished in %s\n", runID, stats.Elapsed.Round(time.Millisecond))

	color.Green("  stored:     %d", stats.Stored)
	color.Cyan("  duplicates: %d", stats.Duplicates)
	color.Yellow("  invalid:    %d", stats.Invalid)
	if runErr != nil {
		color.Red("  failed:     %d (%v)", stats.Failed, runErr)
	}
}
