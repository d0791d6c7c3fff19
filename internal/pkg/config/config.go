package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

const (
	APIModeHTTP   = "http"
	APIModeMemory = "memory"

	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

type Config struct {
	Port      string `env:"PORT,       default=8090"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	API     APIConfig
	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Routes  RoutesConfig
	Pricing PricingConfig
}

type APIConfig struct {
	Mode      string        `env:"API_MODE,       default=http"`
	BaseURL   string        `env:"API_BASE_URL,   default=http://localhost:8080/tymelesstyre"`
	Timeout   time.Duration `env:"API_TIMEOUT,    default=10s"`
	JWTSecret string        `env:"API_JWT_SECRET"`
	// SeedAdmin is "username:password" for an admin account created in memory mode.
	SeedAdmin string `env:"API_SEED_ADMIN"`
}

type StorageConfig struct {
	Backend    string `env:"STORAGE_BACKEND,     default=memory"`
	SQLitePath string `env:"STORAGE_SQLITE_PATH, default=storefront.db"`
	KeyPrefix  string `env:"STORAGE_KEY_PREFIX,  default=storefront"`
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,         default=storefront"`
	Collection string `env:"MONGO_COLLECTION, default=client_storage"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type RoutesConfig struct {
	Login     string `env:"ROUTE_LOGIN,      default=/login"`
	Home      string `env:"ROUTE_HOME,       default=/"`
	AdminHome string `env:"ROUTE_ADMIN_HOME, default=/admin/users"`
}

type PricingConfig struct {
	AutoThreshold string `env:"PRICING_AUTO_THRESHOLD, default=2000"`
	AutoRate      string `env:"PRICING_AUTO_RATE,      default=0.10"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the agent cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.API.Mode {
	case APIModeHTTP:
		if c.API.BaseURL == "" {
			errs = append(errs, errors.New("API_BASE_URL is required in http mode"))
		}
	case APIModeMemory:
		if c.API.JWTSecret == "" {
			errs = append(errs, errors.New("API_JWT_SECRET is required in memory mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown API_MODE %q", c.API.Mode))
	}

	switch c.Storage.Backend {
	case StorageMemory, StorageSQLite, StorageRedis, StorageMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}

	if _, err := c.PricingPolicy(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// PricingPolicy parses the automatic discount settings.
func (c *Config) PricingPolicy() (domain.PricingPolicy, error) {
	threshold, err := decimal.NewFromString(c.Pricing.AutoThreshold)
	if err != nil {
		return domain.PricingPolicy{}, fmt.Errorf("invalid PRICING_AUTO_THRESHOLD %q", c.Pricing.AutoThreshold)
	}
	rate, err := decimal.NewFromString(c.Pricing.AutoRate)
	if err != nil || rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return domain.PricingPolicy{}, fmt.Errorf("invalid PRICING_AUTO_RATE %q", c.Pricing.AutoRate)
	}
	return domain.PricingPolicy{Threshold: threshold, Rate: rate}, nil
}
