package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aimastery/questd/internal/api"
	"github.com/aimastery/questd/internal/app/engagement"
	"github.com/aimastery/questd/internal/app/evaluation"
	"github.com/aimastery/questd/internal/health"
	"github.com/aimastery/questd/internal/infra/sqlite"
	"github.com/aimastery/questd/internal/logging"
)

// Daemon is the core questd runtime. It wires together all services.
type Daemon struct {
	Config     Config
	Log        *zap.Logger
	DB         *sqlite.DB
	Engagement *engagement.Service
	Evaluator  evaluation.Evaluator
	Health     *health.Checker
	Server     *api.Server
	cancel     context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development, cfg.Logging.File)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := sqlite.Open(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	svc := engagement.NewService(db, logger)

	evaluator, err := evaluation.New(evaluation.Config{
		Mode:     cfg.Evaluator.Mode,
		Endpoint: cfg.Evaluator.Endpoint,
		APIKey:   cfg.Evaluator.APIKey,
		Model:    cfg.Evaluator.Model,
		Timeout:  parseDuration(cfg.Evaluator.Timeout, evaluation.DefaultTimeout),
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init evaluator: %w", err)
	}

	checker := health.NewChecker(db, cfg.Storage.Dir, func(ctx context.Context) error {
		return svc.SeedBadges(ctx, engagement.DefaultBadges())
	}, logger)

	srv := api.NewServer(svc, evaluator, logger)
	srv.SetHealth(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:     cfg,
		Log:        logger,
		DB:         db,
		Engagement: svc,
		Evaluator:  evaluator,
		Health:     checker,
		Server:     srv,
	}, nil
}

// Serve starts the HTTP server and the health loop, and blocks until a
// signal arrives, ctx is cancelled, or either of them fails.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	d.cancel = cancel

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // covers a slow remote evaluator
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	// The first run also seeds an empty badge catalog.
	g.Go(func() error {
		d.Health.Run(gctx)
		return nil
	})

	g.Go(func() error {
		d.Log.Info("questd serving",
			zap.String("addr", "http://"+addr),
			zap.String("evaluator", d.Evaluator.Name()),
			zap.Bool("metrics", d.Config.Telemetry.Prometheus),
			zap.String("data_dir", d.Config.Storage.Dir),
		)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		d.Log.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			d.Log.Warn("http shutdown", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.Log != nil {
		_ = d.Log.Sync()
	}
}
