package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// TransformConfig selects and configures the image transform gateway.
type TransformConfig struct {
	Mode string `yaml:"mode" envconfig:"TRANSFORM_MODE"`
	// BaseURL is the inference endpoint prefix; the style id is appended
	// as the last path segment.
	BaseURL        string `yaml:"base_url" envconfig:"TRANSFORM_BASE_URL"`
	Token          string `yaml:"token" envconfig:"TRANSFORM_TOKEN"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"TRANSFORM_TIMEOUT_SECONDS"`
}

// PaymentConfig describes the manual payment flow.
type PaymentConfig struct {
	// Link is the payment instruction text shown on /pay and after a
	// consumed free transform. Usually contains a URL.
	Link             string `yaml:"link" envconfig:"PAYMENT_LINK"`
	EntitlementHours int    `yaml:"entitlement_hours" envconfig:"PAYMENT_ENTITLEMENT_HOURS"`
}

// RedisConfig holds connection settings for the redis session backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// PostgresConfig holds connection settings for the postgres session
// backend. Mirrors the database package's connection options.
type PostgresConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// StorageConfig selects the session store backend.
type StorageConfig struct {
	Backend  string         `yaml:"backend" envconfig:"STORAGE_BACKEND"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

// RateLimitConfig holds settings for per-user rate limiting.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// TransformModeLocal selects the in-process pixel filter pipeline.
	TransformModeLocal = "local"
	// TransformModeRemote selects the remote inference API gateway.
	TransformModeRemote = "remote"
)

const (
	// StorageMemory keeps sessions in process memory (lost on restart).
	StorageMemory = "memory"
	// StoragePostgres persists sessions in PostgreSQL.
	StoragePostgres = "postgres"
	// StorageRedis persists sessions in Redis.
	StorageRedis = "redis"
)

const (
	defaultTransformTimeoutSeconds = 60
	defaultEntitlementHours        = 24
)

// Config aggregates the application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	// Styles maps user-facing display names to internal style ids.
	// Empty means the built-in catalog is used.
	Styles    map[string]string `yaml:"styles"`
	Transform TransformConfig   `yaml:"transform"`
	Payment   PaymentConfig     `yaml:"payment"`
	Storage   StorageConfig     `yaml:"storage"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Telegram.AdminID == 0 {
		return fmt.Errorf("telegram.admin_id is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	tm := strings.ToLower(strings.TrimSpace(cfg.Transform.Mode))
	if tm == "" {
		tm = TransformModeLocal
	}
	switch tm {
	case TransformModeLocal:
	case TransformModeRemote:
		if strings.TrimSpace(cfg.Transform.BaseURL) == "" {
			return fmt.Errorf("transform.base_url is required when transform.mode is 'remote'")
		}
		if strings.TrimSpace(cfg.Transform.Token) == "" {
			return fmt.Errorf("transform.token is required when transform.mode is 'remote'")
		}
	default:
		return fmt.Errorf("invalid transform.mode %q; allowed: local, remote", cfg.Transform.Mode)
	}
	cfg.Transform.Mode = tm
	if cfg.Transform.TimeoutSeconds < 0 {
		return fmt.Errorf("transform.timeout_seconds must be >= 0")
	}
	if cfg.Transform.TimeoutSeconds == 0 {
		cfg.Transform.TimeoutSeconds = defaultTransformTimeoutSeconds
	}

	if cfg.Payment.EntitlementHours < 0 {
		return fmt.Errorf("payment.entitlement_hours must be >= 0")
	}
	if cfg.Payment.EntitlementHours == 0 {
		cfg.Payment.EntitlementHours = defaultEntitlementHours
	}

	sb := strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if sb == "" {
		sb = StorageMemory
	}
	switch sb {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(cfg.Storage.Postgres.Host) == "" {
			return fmt.Errorf("storage.postgres.host is required when storage.backend is 'postgres'")
		}
	case StorageRedis:
		if strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
			return fmt.Errorf("storage.redis.addr is required when storage.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid storage.backend %q; allowed: memory, postgres, redis", cfg.Storage.Backend)
	}
	cfg.Storage.Backend = sb

	for name, id := range cfg.Styles {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(id) == "" {
			return fmt.Errorf("styles entries must have non-empty name and id")
		}
	}

	return nil
}
