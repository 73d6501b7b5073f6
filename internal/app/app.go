package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/engine"
	"github.com/vk/kamelrun/internal/metrics"
	"github.com/vk/kamelrun/internal/registry"
	"github.com/vk/kamelrun/internal/source"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger     *slog.Logger
	logCloser  io.Closer
	config     *Config
	registry   *registry.Registry
	loader     *source.Loader
	model      *config.Model
	promReg    *prometheus.Registry
	metrics    *metrics.Metrics
	engine     *engine.Engine
	httpServer *http.Server
}

// NewApp is the constructor for the main application. A configuration that
// fails to load is a fatal startup error and panics; main recovers it.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	a, err := Load(outW, cfg, modules...)
	if err != nil {
		panic(err)
	}
	return a
}

// Load builds the application and loads every integration without
// starting anything.
func Load(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger, logCloser := newLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "triggers", reg.Triggers(), "sinks", reg.Sinks())

	loader := source.NewLoader(source.Options{
		Properties:    cfg.Properties,
		PropertyFiles: cfg.PropertyFiles,
		UseEnv:        cfg.EnvProperties,
		Registry:      reg,
	})
	model, err := loader.Load(ctx, cfg.Paths...)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to load integrations: %w", err)
	}
	if err := reg.ValidateModel(ctx, model); err != nil {
		logCloser.Close()
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)

	return &App{
		logger:    logger,
		logCloser: logCloser,
		config:    cfg,
		registry:  reg,
		loader:    loader,
		model:     model,
		promReg:   promReg,
		metrics:   m,
		engine:    engine.New(reg, m),
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded integrations.
func (a *App) Model() *config.Model {
	return a.model
}

// Engine returns the route engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Gatherer exposes the application's metrics.
func (a *App) Gatherer() prometheus.Gatherer {
	return a.promReg
}

// Close releases the log file, if any.
func (a *App) Close() error {
	return a.logCloser.Close()
}
