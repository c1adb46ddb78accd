package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/maintenance-planner/internal/data/db"
	"github.com/yungbote/maintenance-planner/internal/observability"
	"github.com/yungbote/maintenance-planner/internal/pkg/envutil"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

type DBConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type BackupConfig struct {
	// Interval of zero disables scheduled backups.
	Interval time.Duration `yaml:"interval"`
	Dir      string        `yaml:"dir"`
	Prefix   string        `yaml:"prefix"`
	S3       S3Config      `yaml:"s3"`
}

type Config struct {
	LogMode       string                   `yaml:"log_mode"`
	HTTPAddr      string                   `yaml:"http_addr"`
	CORSOrigins   []string                 `yaml:"cors_origins"`
	DB            DBConfig                 `yaml:"db"`
	SweepInterval time.Duration            `yaml:"sweep_interval"`
	Backup        BackupConfig             `yaml:"backup"`
	Otel          observability.OtelConfig `yaml:"otel"`
}

func DefaultConfig() Config {
	return Config{
		LogMode:       "development",
		HTTPAddr:      ":8080",
		DB:            DBConfig{Driver: db.DriverSQLite, SQLitePath: "./db/db.sqlite"},
		SweepInterval: time.Hour,
		Backup:        BackupConfig{Prefix: "backups"},
		Otel:          observability.OtelConfig{ServiceName: observability.DefaultServiceName, SampleRatio: 0.1},
	}
}

// LoadConfig layers defaults, then the YAML file at path (CONFIG_FILE when
// path is empty), then environment variables. log may be nil.
func LoadConfig(path string, log *logger.Logger) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = envutil.GetEnv("CONFIG_FILE", "", log)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg, log)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, log *logger.Logger) {
	cfg.LogMode = envutil.GetEnv("LOG_MODE", cfg.LogMode, log)
	cfg.HTTPAddr = envutil.GetEnv("HTTP_ADDR", cfg.HTTPAddr, log)
	if raw := envutil.GetEnv("CORS_ORIGINS", "", log); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}

	cfg.DB.Driver = strings.ToLower(envutil.GetEnv("DB_DRIVER", cfg.DB.Driver, log))
	cfg.DB.DSN = envutil.GetEnv("DB_DSN", cfg.DB.DSN, log)
	cfg.DB.SQLitePath = envutil.GetEnv("SQLITE_PATH", cfg.DB.SQLitePath, log)

	cfg.SweepInterval = envutil.GetEnvAsDuration("SWEEP_INTERVAL", cfg.SweepInterval, log)

	cfg.Backup.Interval = envutil.GetEnvAsDuration("BACKUP_INTERVAL", cfg.Backup.Interval, log)
	cfg.Backup.Dir = envutil.GetEnv("BACKUP_DIR", cfg.Backup.Dir, log)
	cfg.Backup.Prefix = envutil.GetEnv("BACKUP_S3_PREFIX", cfg.Backup.Prefix, log)
	cfg.Backup.S3.Endpoint = envutil.GetEnv("BACKUP_S3_ENDPOINT", cfg.Backup.S3.Endpoint, log)
	cfg.Backup.S3.AccessKey = envutil.GetEnv("BACKUP_S3_ACCESS_KEY", cfg.Backup.S3.AccessKey, log)
	cfg.Backup.S3.SecretKey = envutil.GetEnv("BACKUP_S3_SECRET_KEY", cfg.Backup.S3.SecretKey, log)
	cfg.Backup.S3.Bucket = envutil.GetEnv("BACKUP_S3_BUCKET", cfg.Backup.S3.Bucket, log)
	cfg.Backup.S3.UseSSL = envutil.GetEnvAsBool("BACKUP_S3_USE_SSL", cfg.Backup.S3.UseSSL, log)

	cfg.Otel.Enabled = envutil.GetEnvAsBool("OTEL_ENABLED", cfg.Otel.Enabled, log)
	cfg.Otel.ServiceName = envutil.GetEnv("OTEL_SERVICE_NAME", cfg.Otel.ServiceName, log)
	cfg.Otel.Environment = envutil.GetEnv("OTEL_ENVIRONMENT", cfg.Otel.Environment, log)
	cfg.Otel.Endpoint = envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint, log)
	cfg.Otel.Headers = envutil.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers, log)
	cfg.Otel.Insecure = envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure, log)
	if raw := envutil.GetEnv("OTEL_SAMPLER_RATIO", "", log); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Otel.SampleRatio = f
		} else if log != nil {
			log.Warn("Invalid float in environment, using default", "env_var", "OTEL_SAMPLER_RATIO", "default", cfg.Otel.SampleRatio)
		}
	}
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case db.DriverSQLite:
	case db.DriverPostgres:
		if strings.TrimSpace(c.DB.DSN) == "" {
			errs = append(errs, errors.New("DB_DSN is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}
	if c.SweepInterval < 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL must not be negative"))
	}
	if c.Backup.Interval < 0 {
		errs = append(errs, errors.New("BACKUP_INTERVAL must not be negative"))
	}
	if c.Backup.Interval > 0 && !c.Backup.HasSinks() {
		errs = append(errs, errors.New("BACKUP_INTERVAL is set but neither BACKUP_DIR nor BACKUP_S3_BUCKET is configured"))
	}
	if c.Backup.S3.Bucket != "" && c.Backup.S3.Endpoint == "" {
		errs = append(errs, errors.New("BACKUP_S3_ENDPOINT is required with BACKUP_S3_BUCKET"))
	}
	return errors.Join(errs...)
}

func (b BackupConfig) HasSinks() bool {
	return strings.TrimSpace(b.Dir) != "" || strings.TrimSpace(b.S3.Bucket) != ""
}
