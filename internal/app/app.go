// Package app assembles the renderer, counter and infrastructure clients
// selected by configuration. The HTTP server and the CLI share it.
package app

import (
	"context"
	"fmt"

	"receipt-generator/config"
	"receipt-generator/internal/adapter/remote"
	"receipt-generator/internal/adapter/render"
	fileStorage "receipt-generator/internal/adapter/storage/file"
	pgStorage "receipt-generator/internal/adapter/storage/postgres"
	redisStorage "receipt-generator/internal/adapter/storage/redis"
	"receipt-generator/internal/core/ports"
	"receipt-generator/internal/metrics"
	"receipt-generator/internal/service"
	"receipt-generator/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Components holds everything wired from a Config.
type Components struct {
	Renderer       ports.Renderer
	RendererName   string
	Overlay        *render.Overlay      // nil in remote mode
	Counter        ports.CounterStore   // nil in remote mode
	RateLimitStore ports.RateLimitStore // nil without redis
	HealthCheckers []ports.HealthChecker
	Service        *service.ReceiptServiceImpl

	closers []func()
}

// Close releases database and cache connections in reverse order.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build validates cfg and connects every component it selects. On error
// anything already opened is closed.
func Build(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (_ *Components, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Components{RendererName: cfg.Renderer.Mode}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	var rdb *goredis.Client
	if cfg.NeedsRedis() {
		rdb, err = redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		c.HealthCheckers = append(c.HealthCheckers, redisStorage.NewHealthCheck(rdb))
		c.RateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	if err = c.buildRenderer(ctx, cfg, log); err != nil {
		return nil, err
	}

	if cfg.UsesCounter() {
		if err = c.buildCounter(ctx, cfg, rdb, log); err != nil {
			return nil, err
		}
	}

	c.Service = service.NewReceiptService(
		c.Renderer,
		c.Counter,
		service.ReceiptServiceConfig{RendererName: c.RendererName, IDWidth: cfg.Counter.Width},
		m,
		logger.Component(log, "receipt_service"),
	)
	return c, nil
}

type template interface {
	ports.TemplateSource
	ports.HealthChecker
}

// ResolveLayout returns the calibration for the configured renderer: the
// mode's defaults with renderer.layout_file applied on top.
func ResolveLayout(cfg *config.Config) (render.Layout, error) {
	base := render.DefaultLayout()
	if cfg.Renderer.Mode == config.RendererSynthetic {
		base = render.SyntheticLayout()
	}
	if cfg.Renderer.LayoutFile == "" {
		return base, nil
	}
	return render.LoadLayout(cfg.Renderer.LayoutFile, base)
}

func (c *Components) buildRenderer(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	rlog := logger.Component(log, "renderer")

	var tpl template
	switch cfg.Renderer.Mode {
	case config.RendererRemote:
		client := remote.NewClient(cfg.Remote.BaseURL, nil, cfg.Remote.Timeout, rlog)
		c.Renderer = client
		c.HealthCheckers = append(c.HealthCheckers, client)
		return nil
	case config.RendererSynthetic:
		tpl = render.NewSyntheticTemplate()
	default:
		tpl = render.NewFileTemplate(cfg.Renderer.TemplatePath)
	}
	if err := tpl.Ping(ctx); err != nil {
		return fmt.Errorf("receipt template unusable: %w", err)
	}

	layout, err := ResolveLayout(cfg)
	if err != nil {
		return err
	}

	overlay, err := render.NewOverlay(tpl, layout, rlog)
	if err != nil {
		return err
	}
	c.Overlay = overlay
	c.Renderer = overlay
	c.HealthCheckers = append(c.HealthCheckers, tpl)
	return nil
}

func (c *Components) buildCounter(ctx context.Context, cfg *config.Config, rdb *goredis.Client, log zerolog.Logger) error {
	switch cfg.Counter.Backend {
	case config.CounterRedis:
		c.Counter = redisStorage.NewCounterStore(rdb, cfg.Counter.Key)
	case config.CounterPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		c.closers = append(c.closers, pool.Close)

		store := pgStorage.NewCounterStore(pool, cfg.Counter.Key)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("preparing counter table: %w", err)
		}
		c.Counter = store
		c.HealthCheckers = append(c.HealthCheckers, pgStorage.NewHealthCheck(pool))
	default:
		store := fileStorage.NewCounterStore(cfg.Counter.Path)
		c.Counter = store
		c.HealthCheckers = append(c.HealthCheckers, store)
	}
	return nil
}
