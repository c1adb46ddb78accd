package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/maintenance-planner/internal/backup"
	"github.com/yungbote/maintenance-planner/internal/data/aggregates"
	"github.com/yungbote/maintenance-planner/internal/data/db"
	"github.com/yungbote/maintenance-planner/internal/data/repos"
	httpx "github.com/yungbote/maintenance-planner/internal/http"
	httpH "github.com/yungbote/maintenance-planner/internal/http/handlers"
	"github.com/yungbote/maintenance-planner/internal/jobs"
	"github.com/yungbote/maintenance-planner/internal/observability"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
	"github.com/yungbote/maintenance-planner/internal/services"
)

type Services struct {
	Registry   services.ActionRegistry
	PlanItems  services.PlanItemList
	Plans      services.PlanService
	Executions services.ExecutionService
	Snapshots  services.SnapshotService
}

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Store    *db.StoreService
	DB       *gorm.DB
	Repos    repos.Set
	Services Services

	Sweeper *jobs.ActionSweeper
	// Backups is nil when no sink is configured.
	Backups *jobs.BackupUploader

	otelShutdown func(context.Context) error
}

// New opens the store, migrates it and wires every service. The HTTP router is
// built on demand by Router so CLI commands skip it.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	store, err := db.NewStoreService(ctx, log, db.Options{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		SQLitePath:      cfg.DB.SQLitePath,
		ConnectAttempts: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("store automigrate: %w", err)
	}
	theDB := store.DB()

	log.Info("Wiring repos...")
	reposet := repos.NewSet(theDB, log)

	log.Info("Wiring services...")
	serviceset := wireServices(theDB, log, reposet)

	a := &App{
		Log:          log,
		Cfg:          cfg,
		Store:        store,
		DB:           theDB,
		Repos:        reposet,
		Services:     serviceset,
		Sweeper:      jobs.NewActionSweeper(log, serviceset.Registry),
		otelShutdown: otelShutdown,
	}

	if cfg.Backup.HasSinks() {
		sinks, err := buildSinks(ctx, cfg.Backup)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Backups = jobs.NewBackupUploader(log, serviceset.Snapshots, sinks, cfg.Backup.Prefix)
	}
	return a, nil
}

func wireServices(theDB *gorm.DB, log *logger.Logger, set repos.Set) Services {
	writer := aggregates.NewWriter(aggregates.Deps{
		DB:    theDB,
		Log:   log,
		Hooks: aggregates.NewLogHooks(log),
	})
	clock := services.Clock(time.Now)
	registry := services.NewActionRegistry(writer, log, set.Action)
	items := services.NewPlanItemList(registry, set.PlanItem)
	return Services{
		Registry:   registry,
		PlanItems:  items,
		Plans:      services.NewPlanService(writer, log, set, items, clock),
		Executions: services.NewExecutionService(writer, log, set, clock),
		Snapshots:  services.NewSnapshotService(writer, log, set, clock),
	}
}

func buildSinks(ctx context.Context, cfg BackupConfig) ([]backup.Sink, error) {
	var sinks []backup.Sink
	if cfg.Dir != "" {
		d, err := backup.NewDirSink(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("backup dir sink: %w", err)
		}
		sinks = append(sinks, d)
	}
	if cfg.S3.Bucket != "" {
		m, err := backup.NewMinIOSink(ctx, backup.MinIOConfig{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("backup s3 sink: %w", err)
		}
		sinks = append(sinks, m)
	}
	return sinks, nil
}

func (a *App) Router() *gin.Engine {
	if a.Cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	serviceName := ""
	if a.Cfg.Otel.Enabled {
		serviceName = a.Cfg.Otel.ServiceName
	}
	return httpx.NewRouter(httpx.RouterConfig{
		Log:              a.Log,
		ServiceName:      serviceName,
		CORSOrigins:      a.Cfg.CORSOrigins,
		HealthHandler:    httpH.NewHealthHandler(a.DB),
		PlanHandler:      httpH.NewPlanHandler(a.Services.Plans, a.Services.Executions),
		ExecutionHandler: httpH.NewExecutionHandler(a.Services.Executions),
		BackupHandler:    httpH.NewBackupHandler(a.Services.Snapshots),
	})
}

// Run serves HTTP and runs the background jobs until ctx ends or one of them
// fails.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Cfg.HTTPAddr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	for _, p := range a.periodicJobs() {
		p := p
		g.Go(func() error { return p.Run(gctx) })
	}
	return g.Wait()
}

func (a *App) periodicJobs() []*jobs.Periodic {
	out := []*jobs.Periodic{jobs.NewPeriodic(a.Log, a.Sweeper, a.Cfg.SweepInterval)}
	if a.Backups != nil && a.Cfg.Backup.Interval > 0 {
		out = append(out, jobs.NewPeriodic(a.Log, a.Backups, a.Cfg.Backup.Interval))
	}
	return out
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && a.Log != nil {
			a.Log.Warn("store close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
