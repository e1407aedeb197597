package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/hubmarks/internal/activity"
	"github.com/MrSnakeDoc/hubmarks/internal/config"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
	"github.com/MrSnakeDoc/hubmarks/internal/scheduler"
	"github.com/MrSnakeDoc/hubmarks/internal/version"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	server  *httpserver.Server
	storage *Storage
	seeder  *scheduler.CatalogSeeder
	backups *scheduler.BackupWriter
}

func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	// Open storage early - fail fast if unavailable
	loggerClient.Info("opening storage", logger.String("backend", cfg.Storage))
	storage, err := OpenStorage(context.Background(), cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	recorder := activity.NewRecorder(cfg.ActivitySize)
	recorder.Attach(storage.Store)

	// Initialize catalog seeder (if catalog file is configured)
	var seeder *scheduler.CatalogSeeder
	var catalogTrigger chan struct{}
	if cfg.CatalogFile != "" {
		loggerClient.Info("catalog file configured, initializing seeder",
			logger.String("file", cfg.CatalogFile))
		catalogTrigger = make(chan struct{}, 1)
		seeder = scheduler.NewCatalogSeeder(
			cfg.CatalogFile,
			storage.Store,
			loggerClient.Named("catalog"),
			cfg.ReloadInterval,
			catalogTrigger,
		)
	} else {
		loggerClient.Info("catalog file not configured, seeding disabled")
	}

	// Initialize backup writer (if backup dir is configured)
	var backups *scheduler.BackupWriter
	var backupTrigger chan struct{}
	if cfg.BackupDir != "" {
		backupTrigger = make(chan struct{}, 1)
		backups = scheduler.NewBackupWriter(
			storage.Store,
			cfg.BackupDir,
			cfg.BackupKeep,
			loggerClient.Named("backup"),
			cfg.BackupInterval,
			backupTrigger,
		)
	} else {
		loggerClient.Info("backup dir not configured, backups disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Store:           storage.Store,
		Backend:         storage.Backend,
		StorageMode:     cfg.Storage,
		Activity:        recorder,
		HomeURL:         cfg.HomeURL,
		CatalogTrigger:  catalogTrigger,
		BackupTrigger:   backupTrigger,
	}

	return &App{
		cfg:     cfg,
		logger:  loggerClient,
		server:  httpserver.New(cfg, loggerClient, d),
		storage: storage,
		seeder:  seeder,
		backups: backups,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Hubmarks v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Hubmarks %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start catalog seeder (seeds and starts periodic refresh)
	if a.seeder != nil {
		if err := a.seeder.Start(ctx); err != nil {
			_ = a.storage.Close()
			return fmt.Errorf("failed to start catalog seeder: %w", err)
		}
		a.logger.Info("catalog seeder started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	// Start backup writer
	if a.backups != nil {
		if err := a.backups.Start(ctx); err != nil {
			if a.seeder != nil {
				a.seeder.Stop()
			}
			_ = a.storage.Close()
			return fmt.Errorf("failed to start backup writer: %w", err)
		}
		a.logger.Info("backup writer started",
			logger.String("dir", a.cfg.BackupDir),
			logger.Duration("interval", a.cfg.BackupInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.seeder != nil {
		a.seeder.Stop()
	}
	if a.backups != nil {
		a.backups.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.storage.Close(); err != nil {
		a.logger.Warnf("failed to close storage: %v", err)
	} else {
		a.logger.Info("✅ Storage closed cleanly")
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ Hubmarks stopped cleanly")
	return nil
}
