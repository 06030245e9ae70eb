package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loginflow-systems/login-etl/internal/models"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool configuration. The run loop is single-threaded, so a
	// small pool is plenty; the ceiling only matters for overlapping runs.
	config.MaxConns = 5
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// Insert writes one clean record to user_logins. A unique constraint
// violation (23505) on record_id maps to ErrDuplicateRecord; every other
// failure is returned as-is for the caller to escalate.
func (r *PostgresRepository) Insert(ctx context.Context, rec *models.CleanRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO user_logins (record_id, masked_user_id, masked_device_id, masked_ip, device_type, locale, app_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.RecordID, rec.UserID, rec.DeviceID, nullable(rec.IP),
		nullable(rec.DeviceType), nullable(rec.Locale), rec.AppVersion, rec.CreatedAt,
	)

	if err != nil {
		// Check for unique constraint violation (23505)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("failed to insert login record: %w", err)
	}

	return nil
}

// nullable maps an absent optional field to SQL NULL instead of ''.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
