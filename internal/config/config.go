package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Queue    QueueConfig    `mapstructure:"queue"`
	Database DatabaseConfig `mapstructure:"database"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Dedup    DedupConfig    `mapstructure:"dedup"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type QueueConfig struct {
	URL          string        `mapstructure:"url"`
	Stream       string        `mapstructure:"stream"`
	Subject      string        `mapstructure:"subject"`
	Consumer     string        `mapstructure:"consumer"`
	BatchSize    int           `mapstructure:"batch_size"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	AckWait      time.Duration `mapstructure:"ack_wait"`
	MaxDeliver   int           `mapstructure:"max_deliver"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// ConnString builds the PostgreSQL connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

type PipelineConfig struct {
	// PIIFields lists the record fields subject to reversible masking.
	PIIFields []string `mapstructure:"pii_fields"`
}

type DedupConfig struct {
	// Backend is "memory" (run-scoped set) or "redis" (shared across runs).
	Backend  string        `mapstructure:"backend"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("queue.url", "nats://localhost:4222")
	v.SetDefault("queue.stream", "LOGIN_EVENTS")
	v.SetDefault("queue.subject", "logins.raw")
	v.SetDefault("queue.consumer", "login-etl")
	v.SetDefault("queue.batch_size", 100)
	v.SetDefault("queue.fetch_timeout", "2s")
	v.SetDefault("queue.ack_wait", "30s")
	v.SetDefault("queue.max_deliver", 3)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("pipeline.pii_fields", []string{"user_id", "device_id", "ip"})
	v.SetDefault("dedup.backend", "memory")
	v.SetDefault("dedup.addr", "localhost:6379")
	v.SetDefault("dedup.db", 0)
	v.SetDefault("dedup.key", "login-etl:seen")
	v.SetDefault("dedup.ttl", "0s")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9104")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/login-etl")
	}

	// Environment variables override (e.g. LOGINETL_DATABASE_PASSWORD)
	v.SetEnvPrefix("LOGINETL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
