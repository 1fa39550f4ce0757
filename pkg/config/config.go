package config

import (
	"time"
	_ "time/tzdata"

	"github.com/Proton-105/pricerelay-bot/pkg/redis"
)

// Config holds runtime configuration for the price relay bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot        BotConfig        `mapstructure:"bot"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Relay      RelayConfig      `mapstructure:"relay"`
	Cooldown   CooldownConfig   `mapstructure:"cooldown"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	History    HistoryConfig    `mapstructure:"history"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Redis      redis.Config     `mapstructure:"redis"`
	Server     ServerConfig     `mapstructure:"server"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

// BotConfig configures the Telegram long poller.
type BotConfig struct {
	Token       string        `mapstructure:"token" validate:"required"`
	PollTimeout time.Duration `mapstructure:"poll_timeout" validate:"gt=0"`
}

// ProviderConfig configures the CoinGecko client.
type ProviderConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	APIKey        string        `mapstructure:"api_key"`
	QuoteCurrency string        `mapstructure:"quote_currency" validate:"required"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// RelayConfig holds the forwarded-feed settings. The account credentials are
// passed through to the bridge untouched.
type RelayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Channel string `mapstructure:"channel" validate:"required_if=Enabled true"`
	APIID   string `mapstructure:"api_id"`
	APIHash string `mapstructure:"api_hash"`
	Session string `mapstructure:"session"`
}

type CooldownConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Window  time.Duration `mapstructure:"window" validate:"gt=0"`
}

type PaginationConfig struct {
	PageSize int `mapstructure:"page_size" validate:"gte=1,lte=50"`
}

type HistoryConfig struct {
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// StorageConfig selects where per-chat state lives.
type StorageConfig struct {
	Backend  string        `mapstructure:"backend" validate:"oneof=memory redis"`
	StateTTL time.Duration `mapstructure:"state_ttl" validate:"gt=0"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	File   string `mapstructure:"file"`
}

type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string `mapstructure:"environment"`
}

// Location resolves the configured history timezone, falling back to UTC.
func (c HistoryConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Storage.Backend == "redis" || c.Relay.Enabled
}
