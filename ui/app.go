// Package ui serves the browser front end: an upload and paste form that
// renders analysis reports, plus the mounted JSON API, health and metrics.
package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"statgrid/adapters/excel"
	"statgrid/internal"
	"statgrid/internal/analysis/engine"
	"statgrid/internal/api"
	"statgrid/internal/config"
	"statgrid/internal/errors"
	"statgrid/internal/report"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

const appTitle = "Statgrid"

// App represents the web application
type App struct {
	router    *chi.Mux
	cfg       *config.Config
	logger    *internal.Logger
	registry  *prometheus.Registry
	metrics   *api.Metrics
	templates *template.Template
}

// NewApp wires the router. Each App owns its own Prometheus registry so
// several instances can coexist in tests.
func NewApp(cfg *config.Config, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		router:    chi.NewRouter(),
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		metrics:   api.NewMetrics(registry),
		templates: templates,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
	a.router.Use(instrument(a.metrics))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/report", a.handlePastedReport)
	a.router.Get("/healthz", a.handleHealth)
	a.router.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	apiHandler := api.NewHandler(a.cfg, a.logger, a.metrics)
	a.router.Mount(api.Prefix, apiHandler.Engine())
}

// ServeHTTP lets the App be used directly as an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start serves until ctx is cancelled, then drains in-flight requests for
// up to the configured shutdown timeout.
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting statgrid server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down (timeout %s)", a.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}

type indexPage struct {
	Title       string
	Error       string
	Data        string
	GroupBy     string
	Mu0         string
	MaxUploadMB int
}

func (a *App) page() indexPage {
	return indexPage{Title: appTitle, MaxUploadMB: a.cfg.Server.MaxUploadMB}
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "index.html", a.page())
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handlePastedReport analyses the grid pasted into the form and renders the
// HTML report. Failures re-render the form with the input preserved.
func (a *App) handlePastedReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(a.cfg.Server.MaxUploadMB)<<20)
	if err := r.ParseForm(); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			err = errors.PayloadTooLarge(a.cfg.Server.MaxUploadMB)
		} else {
			err = errors.InvalidInput("could not read the submitted form")
		}
		a.formError(w, a.page(), err)
		return
	}

	p := a.page()
	p.Data = r.PostFormValue("data")
	p.GroupBy = strings.TrimSpace(r.PostFormValue("group_by"))
	p.Mu0 = strings.TrimSpace(r.PostFormValue("mu0"))

	opts := engine.DefaultOptions()
	opts.Policy = a.cfg.Analysis.Policy()
	opts.Mu0 = a.cfg.Analysis.Mu0
	opts.Workers = a.cfg.Analysis.Workers
	opts.GroupBy = p.GroupBy
	if p.Mu0 != "" {
		mu0, err := strconv.ParseFloat(p.Mu0, 64)
		if err != nil {
			a.formError(w, p, errors.InvalidInput("the hypothesised mean must be a number"))
			return
		}
		opts.Mu0 = mu0
	}

	cfg := excel.DefaultReaderConfig()
	cfg.Logger = a.logger
	t, err := excel.ParseText(p.Data, cfg)
	if err != nil {
		a.formError(w, p, err)
		return
	}
	res, err := engine.Analyze(r.Context(), t, opts)
	if err != nil {
		a.metrics.ObserveAnalysis("failed", 0, 0)
		a.formError(w, p, err)
		return
	}
	a.metrics.ObserveAnalysis("ok", len(t.Columns), t.Rows())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(report.Render("Pasted data", res))
}

func (a *App) formError(w http.ResponseWriter, p indexPage, err error) {
	err = errors.FromDomain(err)
	a.logger.Debug("[ui] form rejected: %v", err)
	p.Error = err.Error()
	a.renderTemplate(w, errors.HTTPStatus(err), "index.html", p)
}
