package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/checkout"
	"github.com/noah-isme/toko-checkout/internal/config"
	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// Options tweaks Build for embedding hosts and tests.
type Options struct {
	// LogOutput defaults to stdout.
	LogOutput io.Writer
	// Registerer defaults to a fresh registry exposed as Dependencies.MetricsRegistry.
	Registerer prometheus.Registerer
	// Redis overrides the client built from Config.RedisURL.
	Redis *redis.Client
}

// Dependencies enumerates the shared, read-only collaborators of checkout sessions.
type Dependencies struct {
	Config          *config.Config
	Logger          zerolog.Logger
	Metrics         *obs.Metrics
	MetricsRegistry *prometheus.Registry
	Catalogue       *catalog.Catalogue
	Rules           pricing.Rules
	Redis           *redis.Client

	ownsRedis       bool
	shutdownTracing func(context.Context) error
}

// Build wires logging, metrics, the catalogue and the configured pricing rules.
// The catalogue comes from the Redis snapshot store when Redis is configured,
// otherwise the reference catalogue is used.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*Dependencies, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: config is required")
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel, opts.LogOutput).With().Str("env", cfg.AppEnv).Logger()

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Rules:  cfg.PricingRules,
		Redis:  opts.Redis,
	}

	reg := opts.Registerer
	if reg == nil {
		deps.MetricsRegistry = prometheus.NewRegistry()
		reg = deps.MetricsRegistry
	}
	deps.Metrics = obs.NewMetrics(cfg.MetricsNamespace, reg)

	shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
		ServiceName:   cfg.ServiceName,
		Endpoint:      cfg.TracingEndpoint,
		Exporter:      cfg.TracingExporter,
		SamplingRatio: cfg.TracingSampleRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("app: init tracer: %w", err)
	}
	deps.shutdownTracing = shutdown

	if deps.Redis == nil && cfg.UsesCatalogueStore() {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("app: parse redis url: %w", err)
		}
		deps.Redis = redis.NewClient(redisOpts)
		deps.ownsRedis = true
		if err := redisotel.InstrumentTracing(deps.Redis); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}

	if deps.Redis != nil {
		store := catalog.NewStore(deps.Redis, cfg.CatalogueKey)
		cat, err := store.Load(ctx)
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("app: load catalogue: %w", err)
		}
		deps.Catalogue = cat
		logger.Info().Str("key", store.Key()).Int("products", cat.Len()).Msg("catalogue loaded from store")
	} else {
		deps.Catalogue = catalog.Default()
		logger.Info().Int("products", deps.Catalogue.Len()).Msg("using reference catalogue")
	}

	for _, sku := range deps.Rules.SKUs() {
		if !deps.Catalogue.Has(sku) {
			logger.Warn().Str("sku", sku).Msg("pricing rule targets sku missing from catalogue")
		}
	}
	return deps, nil
}

// NewCheckout opens a session using the configured rules.
func (d *Dependencies) NewCheckout() (*checkout.Checkout, error) {
	return d.NewCheckoutWithRules(d.Rules)
}

// NewCheckoutWithRules opens a session with rules specific to this checkout.
func (d *Dependencies) NewCheckoutWithRules(rules pricing.Rules) (*checkout.Checkout, error) {
	return checkout.New(d.Catalogue, rules, checkout.WithLogger(d.Logger), checkout.WithMetrics(d.Metrics))
}

// Close flushes pending spans and releases the Redis client when Build created it.
func (d *Dependencies) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.Redis != nil && d.ownsRedis {
		errs = append(errs, d.Redis.Close())
		d.Redis = nil
	}
	if d.shutdownTracing != nil {
		errs = append(errs, d.shutdownTracing(context.Background()))
		d.shutdownTracing = nil
	}
	return errors.Join(errs...)
}
