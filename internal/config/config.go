// Package config loads service configuration and opens the database.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// EnvPrefix is prepended to every environment override, e.g. SETTLEMENT_LOG_LEVEL.
const EnvPrefix = "SETTLEMENT"

type Config struct {
	Server struct {
		Port           string   `mapstructure:"port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
		MaxUploadMB    int64    `mapstructure:"max_upload_mb"`
	} `mapstructure:"server"`

	Database struct {
		DSN          string `mapstructure:"dsn"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
		LogLevel     string `mapstructure:"log_level"`
	} `mapstructure:"database"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Ingestion struct {
		CSVChunkSize    int           `mapstructure:"csv_chunk_size"`
		InsertBatchSize int           `mapstructure:"insert_batch_size"`
		ResultTTL       time.Duration `mapstructure:"result_ttl"`
		QueueSize       int           `mapstructure:"queue_size"`
		Workers         int           `mapstructure:"workers"`
	} `mapstructure:"ingestion"`
}

// Load resolves defaults, an optional config.yaml and SETTLEMENT_* env vars.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindEnv("database.dsn", EnvPrefix+"_DATABASE_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("binding database dsn: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_mb", 100)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ingestion.csv_chunk_size", 50000)
	v.SetDefault("ingestion.insert_batch_size", 1000)
	v.SetDefault("ingestion.result_ttl", time.Hour)
	v.SetDefault("ingestion.queue_size", 16)
	v.SetDefault("ingestion.workers", 1)
}

func validate(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level %q: %w", cfg.Log.Level, err)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	if cfg.Ingestion.CSVChunkSize <= 0 {
		return fmt.Errorf("ingestion.csv_chunk_size must be positive, got %d", cfg.Ingestion.CSVChunkSize)
	}
	if cfg.Ingestion.InsertBatchSize <= 0 {
		return fmt.Errorf("ingestion.insert_batch_size must be positive, got %d", cfg.Ingestion.InsertBatchSize)
	}
	if cfg.Ingestion.ResultTTL <= 0 {
		return fmt.Errorf("ingestion.result_ttl must be positive, got %s", cfg.Ingestion.ResultTTL)
	}
	if cfg.Ingestion.Workers < 1 {
		return fmt.Errorf("ingestion.workers must be at least 1, got %d", cfg.Ingestion.Workers)
	}
	if cfg.Ingestion.QueueSize < 0 {
		return fmt.Errorf("ingestion.queue_size must not be negative, got %d", cfg.Ingestion.QueueSize)
	}
	return nil
}

// InitDB opens the Postgres connection described by cfg.Database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, errors.New("database dsn is empty (set SETTLEMENT_DATABASE_DSN or DATABASE_URL)")
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.Database.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
