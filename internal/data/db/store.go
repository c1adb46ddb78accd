package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver     string
	DSN        string
	SQLitePath string
	// ConnectAttempts bounds how many times opening the store is retried.
	ConnectAttempts int
	Silent          bool
}

type StoreService struct {
	db     *gorm.DB
	log    *logger.Logger
	driver string
}

func NewStoreService(ctx context.Context, logg *logger.Logger, opts Options) (*StoreService, error) {
	serviceLog := logg.With("service", "StoreService", "driver", opts.Driver)

	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	level := gormLogger.Warn
	if opts.Silent {
		level = gormLogger.Silent
	}
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	attempts := opts.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	var theDB *gorm.DB
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		opened, openErr := gorm.Open(dialector, &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLog,
		})
		if openErr != nil {
			serviceLog.Warn("Store open failed, retrying", "error", openErr)
			return retry.RetryableError(openErr)
		}
		theDB = opened
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", opts.Driver, err)
	}

	if opts.Driver == DriverSQLite {
		// Single writer: one connection serialises every transaction.
		sqlDB, err := theDB.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	serviceLog.Info("Store opened")
	return &StoreService{db: theDB, log: serviceLog, driver: opts.Driver}, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverPostgres:
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, fmt.Errorf("postgres driver requires DB_DSN")
		}
		return postgres.Open(opts.DSN), nil
	case DriverSQLite, "":
		dsn := strings.TrimSpace(opts.DSN)
		if dsn == "" {
			path := opts.SQLitePath
			if path == "" {
				path = "./db/db.sqlite"
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
			dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}
}

func (s *StoreService) DB() *gorm.DB { return s.db }

func (s *StoreService) Driver() string { return s.driver }

func (s *StoreService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *StoreService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
