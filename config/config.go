// Package config loads racebot settings from the environment, an optional
// .env file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"racebot/ergast"
)

const envPrefix = "RACEBOT"

// Keys understood by Load. Flags bound to viper use the same names.
const (
	KeyBaseURL       = "ergast.base_url"
	KeyRetries       = "ergast.retries"
	KeyTimeout       = "ergast.timeout"
	KeyBackoff       = "ergast.backoff"
	KeyServerAddress = "server.address"
	KeyLogLevel      = "log.level"
	KeyVkGroupToken  = "vk.group_token"
	KeyVkUserToken   = "vk.user_token"
	KeyTgToken       = "telegram.token"

	KeyTracingEndpoint = "tracing.endpoint"
	KeyTracingInsecure = "tracing.insecure"
	KeyTracingSampling = "tracing.sampling"
)

type Ergast struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Retries int           `mapstructure:"retries" validate:"gte=1,lte=10"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Backoff time.Duration `mapstructure:"backoff" validate:"gte=0"`
}

// Policy converts the settings into the gateway's retry policy.
func (e Ergast) Policy() ergast.Policy {
	return ergast.Policy{Retries: e.Retries, Timeout: e.Timeout, Backoff: e.Backoff}
}

type Server struct {
	Address string `mapstructure:"address" validate:"required"`
}

// Tracing configures span export. Spans are recorded even without an
// endpoint so that log lines carry trace ids.
type Tracing struct {
	Endpoint string  `mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure bool    `mapstructure:"insecure"`
	Sampling float64 `mapstructure:"sampling" validate:"gte=0,lte=1"`
}

type Log struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Bots holds the chat tokens. They are only checked by RequireBots since the
// HTTP API and CLI run without them.
type Bots struct {
	VkGroupToken string `mapstructure:"group_token"`
	VkUserToken  string `mapstructure:"user_token"`
	TgChatToken  string `mapstructure:"token"`
}

type Config struct {
	Ergast  Ergast  `mapstructure:"ergast"`
	Server  Server  `mapstructure:"server"`
	Log     Log     `mapstructure:"log"`
	Tracing Tracing `mapstructure:"tracing"`
	Bots    Bots    `mapstructure:"-"`
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyBaseURL, ergast.DefaultBaseURL)
	v.SetDefault(KeyRetries, ergast.DefaultPolicy().Retries)
	v.SetDefault(KeyTimeout, ergast.DefaultPolicy().Timeout)
	v.SetDefault(KeyBackoff, ergast.DefaultPolicy().Backoff)
	v.SetDefault(KeyServerAddress, ":8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyTracingEndpoint, "")
	v.SetDefault(KeyTracingInsecure, false)
	v.SetDefault(KeyTracingSampling, 1.0)

	// The bot tokens keep their historical variable names.
	_ = v.BindEnv(KeyVkGroupToken, "RACEVK_BOT")
	_ = v.BindEnv(KeyVkUserToken, "USERTOKEN_VK")
	_ = v.BindEnv(KeyTgToken, "RACETG_BOT")

	return v
}

// LoadDotEnv reads path into the process environment. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Bots = Bots{
		VkGroupToken: v.GetString(KeyVkGroupToken),
		VkUserToken:  v.GetString(KeyVkUserToken),
		TgChatToken:  v.GetString(KeyTgToken),
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// RequireBots fails when a token the bots need is missing.
func (c *Config) RequireBots() error {
	var missing []string
	if c.Bots.VkGroupToken == "" {
		missing = append(missing, "RACEVK_BOT")
	}
	if c.Bots.VkUserToken == "" {
		missing = append(missing, "USERTOKEN_VK")
	}
	if c.Bots.TgChatToken == "" {
		missing = append(missing, "RACETG_BOT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("error getting environment %s", strings.Join(missing, ", "))
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
