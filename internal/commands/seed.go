package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/loginflow-systems/login-etl/internal/queue"
	"github.com/loginflow-systems/login-etl/internal/seeder"
)

var (
	seedProfilePath   string
	seedCount         int
	seedDuplicateFrac float64
	seedMalformedFrac float64
	seedSeed          uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Publish fake login events onto the queue",
	Long: `seed fills the configured stream with generated login events so a
subsequent run has something to drain. Duplicate and malformed ratios make
it easy to exercise the skip paths.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := seeder.DefaultProfile()
		if seedProfilePath != "" {
			var err error
			profile, err = seeder.LoadProfile(seedProfilePath)
			if err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("count") {
			profile.Count = seedCount
		}
		if cmd.Flags().Changed("duplicate-ratio") {
			profile.DuplicateRatio = seedDuplicateFrac
		}
		if cmd.Flags().Changed("malformed-ratio") {
			profile.MalformedRatio = seedMalformedFrac
		}
		if cmd.Flags().Changed("seed") {
			profile.Seed = seedSeed
		}

		ctx := cmd.Context()
		pub, err := queue.NewPublisher(ctx, queueConfig())
		if err != nil {
			return fmt.Errorf("connect to queue: %w", err)
		}
		defer pub.Close()

		res, err := seeder.New(profile, pub).Seed(ctx)
		if err != nil {
			return err
		}

		color.New(color.Bold).Printf("published %d events to %s\n", res.Published, cfg.Queue.Subject)
		color.Cyan("  duplicates: %d", res.Duplicates)
		color.Yellow("  malformed:  %d", res.Malformed)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	seedCmd.Flags().StringVar(&seedProfilePath, "profile", "", "YAML seed profile")
	seedCmd.Flags().IntVar(&seedCount, "count", 100, "number of events to publish")
	seedCmd.Flags().Float64Var(&seedDuplicateFrac, "duplicate-ratio", 0, "fraction of events reusing an earlier record_id")
	seedCmd.Flags().Float64Var(&seedMalformedFrac, "malformed-ratio", 0, "fraction of events published as broken JSON")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0, "random seed for reproducible output")
	rootCmd.AddCommand(seedCmd)
}
