// Package main runs the coworking booking service: the REST API with its
// entity caches over SQLite, the health endpoint and the Prometheus metrics
// server.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/coworking/booking"
	"github.com/c360/coworking/config"
	"github.com/c360/coworking/errors"
	"github.com/c360/coworking/gateway"
	gatewayhttp "github.com/c360/coworking/gateway/http"
	"github.com/c360/coworking/health"
	"github.com/c360/coworking/metric"
	"github.com/c360/coworking/storage/sqlite"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "coworking"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		logger.Info("Configuration is valid")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.store.Close(); err != nil {
			logger.Error("Close store failed", "error", err)
		}
	}()

	return app.run(ctx)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("Starting coworking service",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// loadConfig loads defaults, the optional file and environment overrides
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader.AddLayer(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// application wires the store, caches, services and servers
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *sqlite.Store
	registry *metric.MetricsRegistry
	server   *http.Server
	metrics  *metric.Server
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	registry := metric.NewMetricsRegistry()
	core := registry.CoreMetrics()

	store, err := sqlite.Open(ctx, cfg.Storage,
		sqlite.WithRetry(errors.DefaultRetryConfig()),
		sqlite.WithMetrics(core),
		sqlite.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	handler, err := buildHandler(cfg, store, registry, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	app := &application{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: registry,
		server: &http.Server{
			Addr:              cfg.Server.Address(),
			Handler:           handler,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
	}
	if cfg.Metrics.Enabled {
		app.metrics = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	}
	return app, nil
}

// buildHandler creates the caches, services, gateway and health endpoint and
// returns the root API handler.
func buildHandler(cfg *config.Config, store *sqlite.Store, registry *metric.MetricsRegistry,
	logger *slog.Logger) (http.Handler, error) {
	core := registry.CoreMetrics()

	caches, err := booking.NewCaches(cfg.Cache, registry, logger)
	if err != nil {
		return nil, fmt.Errorf("create caches: %w", err)
	}

	opts := []booking.Option{booking.WithLogger(logger)}
	deps := gatewayhttp.Dependencies{
		Spaces:       booking.NewSpaceService(store.Spaces(), store.Users(), caches, opts...),
		Users:        booking.NewUserService(store.Users(), caches, opts...),
		Reservations: booking.NewReservationService(store.Reservations(), store.Spaces(), store.Users(), caches, opts...),
		Caches:       caches,
		Visits:       booking.NewVisitCounter(core),
		Metrics:      core,
		Logger:       logger,
	}

	var gatewayOpts []gatewayhttp.Option
	if cfg.RateLimit.Enabled {
		gatewayOpts = append(gatewayOpts,
			gatewayhttp.WithRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}
	gw, err := gatewayhttp.NewGateway(cfg.Gateway, deps, gatewayOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}

	monitor := health.NewMonitor()
	monitor.AddCheck("storage", health.PingCheck("storage", store))
	monitor.AddCheck("gateway", gw.HealthCheck)

	mux := http.NewServeMux()
	for _, h := range []gateway.HTTPHandler{gw, health.NewHandler(monitor, appName, logger)} {
		h.RegisterHTTPHandlers("/", mux)
	}

	return gw.Middleware(mux), nil
}

// run serves until ctx is canceled or a server fails, then shuts both
// servers down within the configured timeout.
func (a *application) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("API server listening", "address", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if a.metrics != nil {
		g.Go(func() error {
			a.logger.Info("Metrics server listening", "address", a.metrics.Address())
			return a.metrics.Start()
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down", "timeout", a.cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
		if a.metrics != nil {
			if err := a.metrics.Stop(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return stderrors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("Coworking service shutdown complete")
	return nil
}
