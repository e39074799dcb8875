package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the module.
const EnvPrefix = "storefront"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Guest   GuestConfig
	Poll    PollConfig
	JWT     JWTConfig
	Watch   WatchConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type BackendConfig struct {
	BaseURL        string        `envconfig:"STOREFRONT_BACKEND_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"STOREFRONT_BACKEND_REQUEST_TIMEOUT" default:"15s"`

	BreakerMaxRequests  int           `envconfig:"STOREFRONT_BACKEND_BREAKER_MAX_REQUESTS" default:"3"`
	BreakerInterval     time.Duration `envconfig:"STOREFRONT_BACKEND_BREAKER_INTERVAL" default:"60s"`
	BreakerTimeout      time.Duration `envconfig:"STOREFRONT_BACKEND_BREAKER_TIMEOUT" default:"30s"`
	BreakerMinRequests  int           `envconfig:"STOREFRONT_BACKEND_BREAKER_MIN_REQUESTS" default:"5"`
	BreakerFailureRatio float64       `envconfig:"STOREFRONT_BACKEND_BREAKER_FAILURE_RATIO" default:"0.6"`
}

func (b BackendConfig) validate() error {
	if strings.TrimSpace(b.BaseURL) == "" {
		return fmt.Errorf("backend base url is required")
	}
	if !strings.HasPrefix(b.BaseURL, "http://") && !strings.HasPrefix(b.BaseURL, "https://") {
		return fmt.Errorf("backend base url must be http(s), got %q", b.BaseURL)
	}
	return nil
}

type GuestConfig struct {
	StorePath  string `envconfig:"STOREFRONT_GUEST_STORE_PATH" default:"storefront.db"`
	StorageKey string `envconfig:"STOREFRONT_GUEST_STORAGE_KEY" default:"cart:guest"`
}

type PollConfig struct {
	OrdersInterval time.Duration `envconfig:"STOREFRONT_POLL_ORDERS_INTERVAL" default:"60s"`
	UnreadInterval time.Duration `envconfig:"STOREFRONT_POLL_UNREAD_INTERVAL" default:"60s"`
	TrackInterval  time.Duration `envconfig:"STOREFRONT_POLL_TRACK_INTERVAL" default:"30s"`
}

// JWTConfig is optional; when a secret is present bearer tokens are
// verified during introspection instead of decoded unverified.
type JWTConfig struct {
	Secret string `envconfig:"STOREFRONT_JWT_SECRET"`
	Issuer string `envconfig:"STOREFRONT_JWT_ISSUER"`
}

func (j JWTConfig) VerificationEnabled() bool {
	return strings.TrimSpace(j.Secret) != ""
}

// WatchConfig configures the order watcher daemon.
type WatchConfig struct {
	Addr         string `envconfig:"STOREFRONT_WATCH_ADDR" default:":9090"`
	ServiceToken string `envconfig:"STOREFRONT_WATCH_SERVICE_TOKEN"`
}
