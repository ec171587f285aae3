package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "github.com/lib/pq"

	"github.com/statforge/statforge/internal/allocate"
	"github.com/statforge/statforge/internal/api"
	"github.com/statforge/statforge/internal/auth"
	"github.com/statforge/statforge/internal/catalog"
	"github.com/statforge/statforge/internal/config"
	"github.com/statforge/statforge/internal/database"
	"github.com/statforge/statforge/internal/fetch"
	"github.com/statforge/statforge/internal/generator"
	"github.com/statforge/statforge/internal/health"
	"github.com/statforge/statforge/internal/logging"
	"github.com/statforge/statforge/internal/metrics"
	"github.com/statforge/statforge/internal/scheduler"
	"github.com/statforge/statforge/internal/server"
	"github.com/statforge/statforge/internal/validate"
	"log/slog"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation service with its admin API",
	Long: `Serve starts the HTTP service: the admin generation endpoint, the
source catalog listing, pending draft listings, Prometheus metrics, and
the optional interval scheduler. Requires DATABASE_URL.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// buildPipeline assembles the shared generation components. The repository
// may be nil, restricting the orchestrator to dry runs.
func buildPipeline(opts config.GenerationOptions, repo database.DraftRepository, collector *metrics.GenerationCollector, logger *slog.Logger) (catalog.Catalog, health.Checker, *generator.Orchestrator) {
	cat := catalog.NewFileCatalog(opts.SourcesPath)
	checker := health.NewHTTPChecker(opts.HealthTimeout, logger)

	client := &http.Client{Timeout: opts.FetchTimeout}
	limiter := fetch.NewLimiter(opts.FetchRatePerSec, opts.FetchBurst)
	registry := fetch.NewRegistry(
		fetch.NewRSSAdapter(client, limiter, opts.FetchTimeout, logger),
		fetch.NewAPIAdapter(client, limiter, opts.FetchTimeout, logger),
	)

	validator := validate.NewClaimValidator(logger)
	allocator := allocate.New(opts, nil, logger)

	orch := generator.New(cat, checker, registry, validator, allocator, repo, opts, collector, logger)
	return cat, checker, orch
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	logger.Info("starting statforge")

	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required to serve")
	}

	logger.Info("connecting to database")
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	logger.Info("database connected")

	// Run pending migrations (non-fatal to allow the app to start even if
	// migrations fail)
	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
		logger.Warn("failed to run migrations, continuing anyway", "error", err)
	}

	repo := database.NewPostgresDraftRepository(db)

	collector, err := metrics.NewHTTPCollector()
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	genCollector, err := metrics.NewGenerationCollector(collector.Registry())
	if err != nil {
		return fmt.Errorf("initializing generation metrics: %w", err)
	}

	cat, checker, orch := buildPipeline(cfg.Generation, repo, genCollector, logger)

	authConfig := auth.LoadConfigFromEnv()

	mux := http.NewServeMux()
	api.SetupRoutes(mux, orch, cat, checker, repo, cfg.Generation, authConfig, logger)
	mux.Handle("/metrics", collector.Handler())

	handler := collector.InstrumentHandler(mux)
	srv := server.New(cfg.Server, logger, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewGenerationScheduler(orch, cfg.Generation, logger)
	go sched.Start(ctx)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("statforge started", "port", cfg.Server.Port)

	waitForSignal(logger)

	logger.Info("shutting down")
	sched.Stop()
	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
