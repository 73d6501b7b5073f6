package app

import (
	"context"
	"fmt"

	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/watch"
)

// Run starts every loaded route and blocks until ctx is done, the
// configured duration elapses, or every bounded trigger is exhausted. In
// dev mode the sources are watched and reloaded on change.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Duration)
		defer cancel()
	}

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(ctx, a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthcheckServer(ctx)
	}

	if a.config.Dev {
		a.logger.Info("👀 Dev mode: watching sources for changes.", "paths", a.config.Paths)
		w := watch.New(a.config.Paths, a.config.DevDebounce, a.reload, a.engine.Run)
		if err := w.Run(ctx, a.model); err != nil {
			return fmt.Errorf("dev mode: %w", err)
		}
		return nil
	}

	if err := a.engine.Run(ctx, a.model); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// reload loads the sources again for dev mode.
func (a *App) reload(ctx context.Context) (*config.Model, error) {
	model, err := a.loader.Load(ctx, a.config.Paths...)
	if err != nil {
		return nil, err
	}
	if err := a.registry.ValidateModel(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}
