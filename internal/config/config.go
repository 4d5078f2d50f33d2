package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	ServiceName        string
	LogFormat          string
	LogLevel           string
	MetricsNamespace   string
	TracingExporter    string
	TracingEndpoint    string
	TracingSampleRatio float64
	RedisURL           string
	CatalogueKey       string
	PricingRules       pricing.Rules
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	rules, err := pricing.ParseRules(k.String("PRICING_RULES"))
	if err != nil {
		return nil, common.NewAppError(common.CodeInvalidConfig, fmt.Sprintf("PRICING_RULES: %v", err), err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		ServiceName:        valueOrDefault(k.String("SERVICE_NAME"), "toko-checkout"),
		LogFormat:          strings.ToLower(valueOrDefault(k.String("LOG_FORMAT"), "json")),
		LogLevel:           strings.ToLower(valueOrDefault(k.String("LOG_LEVEL"), "info")),
		MetricsNamespace:   valueOrDefault(k.String("METRICS_NAMESPACE"), "checkout"),
		TracingExporter:    strings.ToLower(valueOrDefault(k.String("TRACING_EXPORTER"), "none")),
		TracingEndpoint:    strings.TrimSpace(k.String("OTEL_EXPORTER_OTLP_ENDPOINT")),
		TracingSampleRatio: parseRatio(k.String("TRACING_SAMPLE_RATIO"), 1),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CatalogueKey:       valueOrDefault(k.String("CATALOGUE_KEY"), catalog.DefaultStoreKey),
		PricingRules:       rules,
	}
	return cfg, nil
}

// UsesCatalogueStore reports whether the catalogue should be read from Redis.
func (c *Config) UsesCatalogueStore() bool {
	return c != nil && c.RedisURL != ""
}

func valueOrDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func parseRatio(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || v <= 0 || v > 1 {
		return fallback
	}
	return v
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
