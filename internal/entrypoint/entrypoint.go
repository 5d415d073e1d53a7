package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/aggregator"
	"github.com/mrlokans/bookmemo/internal/config"
	"github.com/mrlokans/bookmemo/internal/database"
	http_controllers "github.com/mrlokans/bookmemo/internal/http"
	"github.com/mrlokans/bookmemo/internal/logging"
	"github.com/mrlokans/bookmemo/internal/metrics"
	"github.com/mrlokans/bookmemo/internal/mirror"
	"github.com/mrlokans/bookmemo/internal/providers"
	"github.com/mrlokans/bookmemo/internal/providers/googlebooks"
	"github.com/mrlokans/bookmemo/internal/providers/rakuten"
	"github.com/mrlokans/bookmemo/internal/recommend"
	"github.com/mrlokans/bookmemo/internal/repository"
	"github.com/mrlokans/bookmemo/internal/scheduler"
	"github.com/mrlokans/bookmemo/internal/tasks"
	"github.com/mrlokans/bookmemo/internal/volumes"
	"github.com/mrlokans/bookmemo/internal/workerpool"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the wired components of a running server.
type App struct {
	Router *gin.Engine

	logger    *zap.Logger
	db        *database.Database
	pool      *workerpool.Pool
	taskCtx   context.CancelFunc
	tasks     *tasks.Client
	scheduler *scheduler.ReconcileScheduler
	drain     time.Duration
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts the server
// down before calling onShutdown.
func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("server exiting")
}

// Build wires every component from cfg. The caller owns the returned App and
// must call Shutdown.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, version string) (*App, error) {
	app := &App{logger: logger, drain: cfg.Pool.DrainTimeout}
	collector := metrics.NewCollector()

	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db
	store := database.NewAnnotationStore(db, collector)

	app.pool = workerpool.New(cfg.Pool.Workers, cfg.Pool.QueueSize, logger, collector)

	// External providers
	httpClient := providers.NewHTTPClient(providers.DefaultTimeouts())
	google := googlebooks.NewClient(googlebooks.Config{
		BaseURL: cfg.GoogleBooks.BaseURL,
		APIKey:  cfg.GoogleBooks.APIKey,
		RPS:     cfg.GoogleBooks.RPS,
	}, httpClient, logger, collector)
	resolver := volumes.NewResolver(google)

	var ranking providers.RankingSource
	if cfg.Rakuten.ApplicationID != "" {
		ranking = rakuten.NewClient(rakuten.Config{
			BaseURL:       cfg.Rakuten.BaseURL,
			ApplicationID: cfg.Rakuten.ApplicationID,
			RPS:           cfg.Rakuten.RPS,
		}, httpClient, google, logger, collector)
	} else {
		logger.Warn("RAKUTEN_APPLICATION_ID is not set, ranking is disabled")
	}
	books := aggregator.New(app.pool, []providers.Searcher{google}, ranking, logger)

	deps := repository.Deps{
		Pool:          app.pool,
		Store:         store,
		Resolver:      resolver,
		Logger:        logger,
		StoreTimeout:  cfg.Pool.StoreTimeout,
		MirrorTimeout: cfg.Pool.MirrorTimeout,
	}

	routerCfg := http_controllers.RouterConfig{
		Logger:         logger,
		Books:          books,
		Database:       db,
		Version:        version,
		MetricsHandler: collector.Handler(),
	}

	// Public mirror, favorite genres and recommendations
	var publicMirror *mirror.Mirror
	if cfg.Mirror.Enabled {
		dynamo, err := mirror.NewDynamoClient(ctx, cfg.Mirror.Region, cfg.Mirror.Endpoint)
		if err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		publicMirror = mirror.NewMirror(dynamo, cfg.Mirror.Table, logger, collector)
		genres := mirror.NewGenreStore(dynamo, cfg.Mirror.UsersTable, collector)

		deps.Mirror = publicMirror
		routerCfg.Genres = genres
		routerCfg.Recommender = recommend.NewEngine(app.pool, genres, publicMirror, resolver, recommend.EngineConfig{
			Candidates:    cfg.Recommend.Candidates,
			Limit:         cfg.Recommend.Limit,
			MirrorTimeout: cfg.Pool.MirrorTimeout,
		}, logger)
	} else {
		logger.Warn("MIRROR_ENABLED is false, summaries stay local and recommendations are disabled")
	}

	repo := repository.New(deps)
	routerCfg.Annotations = repo

	// Background reconcile queue
	if cfg.Tasks.Enabled && publicMirror != nil {
		taskClient, err := tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}, logger)
		if err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.tasks = taskClient

		reconciler := tasks.NewReconciler(store, publicMirror, logger)
		taskClient.Register(
			tasks.NewReconcileMirrorQueue(reconciler),
			tasks.NewReconcileAllQueue(store, taskClient, logger),
		)

		taskCtx, cancel := context.WithCancel(context.Background())
		app.taskCtx = cancel
		go taskClient.Start(taskCtx)

		app.scheduler = scheduler.NewReconcileScheduler(taskClient, cfg.Reconcile.Schedule, cfg.Reconcile.Enabled, logger)
		if err := app.scheduler.Start(taskCtx); err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("failed to start reconcile scheduler: %w", err)
		}

		routerCfg.Reconcile = taskClient
	}

	app.Router = http_controllers.NewRouter(routerCfg)
	return app, nil
}

// Shutdown stops background work in dependency order: scheduler, task queue,
// worker pool, then the database. It is safe to call more than once.
func (a *App) Shutdown(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.tasks != nil {
		a.tasks.Stop(ctx)
		if a.taskCtx != nil {
			a.taskCtx()
		}
		if err := a.tasks.Close(); err != nil {
			a.logger.Error("closing task database", zap.Error(err))
		}
		a.tasks = nil
	}
	if a.pool != nil && !a.pool.Shutdown(a.drain) {
		a.logger.Warn("worker pool did not drain before the deadline")
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("closing database", zap.Error(err))
		}
		a.db = nil
	}
}

func Run(cfg *config.Config, version string) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting BookMemo", zap.String("version", version))

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := Build(context.Background(), cfg, logger, version)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	Serve(app.Router, cfg, logger, app.Shutdown)
}
