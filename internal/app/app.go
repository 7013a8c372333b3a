// Package app wires the report service together: configuration, logging,
// metrics, routing and the HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"clinicpulse/internal/config"
	"clinicpulse/internal/errors"
	"clinicpulse/internal/exporter"
	"clinicpulse/internal/infrastructure"
	custommw "clinicpulse/internal/middleware"
	"clinicpulse/internal/services"
	handlers "clinicpulse/internal/transport/http"
)

const (
	Version = "1.0.0"
	AppName = "ClinicPulse Revenue Report"
)

// Application is the composed service: config, logger, metrics registry,
// the report pipeline and the HTTP server around it.
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *infrastructure.Metrics
	Service  *services.ReportService
	Router   *chi.Mux
	Server   *http.Server

	webFS fs.FS
}

// NewApplication loads configuration and builds the full application.
// webFS carries the embedded upload page; pass nil to disable the UI.
func NewApplication(webFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := infrastructure.NewMetrics(registry)

	exp := exporter.New(cfg.Report, logger)
	service := services.NewReportService(exp, metrics, logger)

	app := &Application{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  metrics,
		Service:  service,
		webFS:    webFS,
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router and all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))

	if a.Config.Server.RateLimit.Enabled {
		r.Use(custommw.NewRateLimiter(a.Config.Server.RateLimit).Handler)
	}

	errorHandler := errors.NewErrorHandler(a.Logger)
	reportHandler := handlers.NewReportHandler(a.Service, a.Config.Report, errorHandler, a.Logger)
	healthHandler := handlers.NewHealthHandler(Version)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", healthHandler.Health)
		r.Post("/reports", reportHandler.GenerateReport)
		r.Post("/reports/pdf", reportHandler.GenerateReportPDF)
	})

	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))

	if a.webFS != nil {
		r.Get("/", a.serveIndex)
	}

	a.Router = r
}

// serveIndex serves the embedded upload page.
func (a *Application) serveIndex(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(a.webFS, "index.html")
	if err != nil {
		a.Logger.ErrorContext(r.Context(), "failed to read embedded index page",
			slog.String("error", err.Error()))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run serves until the context is cancelled or an interrupt arrives,
// then shuts the server down within the configured grace period.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "server listening",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down",
			slog.String("grace_period", a.Config.Server.ShutdownTimeout.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	err := g.Wait()
	infrastructure.CloseLogFile()
	if err != nil {
		return err
	}

	a.Logger.Info("application shutdown complete")
	return nil
}
