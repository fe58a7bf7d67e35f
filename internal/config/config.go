// Package config loads settings from defaults, an optional autofill.yaml,
// a .env file and AUTOFILL_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	AI      AIConfig      `mapstructure:"ai"`
	Browser BrowserConfig `mapstructure:"browser"`
	History HistoryConfig `mapstructure:"history"`
	Server  ServerConfig  `mapstructure:"server"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Keys        KeysConfig    `mapstructure:"keys"`
}

// KeysConfig holds one API key per provider.
type KeysConfig struct {
	Gemini string `mapstructure:"gemini"`
	Claude string `mapstructure:"claude"`
	OpenAI string `mapstructure:"openai"`
}

// APIKey returns the key for the configured provider.
func (c AIConfig) APIKey() string {
	switch c.Provider {
	case "claude", "anthropic":
		return c.Keys.Claude
	case "openai", "gpt":
		return c.Keys.OpenAI
	default:
		return c.Keys.Gemini
	}
}

type BrowserConfig struct {
	Headless bool          `mapstructure:"headless"`
	Width    int           `mapstructure:"width"`
	Height   int           `mapstructure:"height"`
	Profile  string        `mapstructure:"profile"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type HistoryConfig struct {
	Path     string `mapstructure:"path"`
	MaxSize  int    `mapstructure:"max_size"`
	HintSize int    `mapstructure:"hint_size"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults initializes default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.temperature", 0.9)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.keys.gemini", "")
	v.SetDefault("ai.keys.claude", "")
	v.SetDefault("ai.keys.openai", "")

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 800)
	v.SetDefault("browser.profile", "")
	v.SetDefault("browser.timeout", "30s")

	v.SetDefault("history.path", "")
	v.SetDefault("history.max_size", 50)
	v.SetDefault("history.hint_size", 10)

	v.SetDefault("server.addr", "127.0.0.1:8787")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
}

// Load reads configuration. An empty file means ./autofill.yaml if present.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("autofill")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AUTOFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper decodes and validates v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Vendor variable names are honoured as fallbacks for the keys.
	v.BindEnv("ai.keys.gemini", "AUTOFILL_AI_KEYS_GEMINI", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	v.BindEnv("ai.keys.claude", "AUTOFILL_AI_KEYS_CLAUDE", "ANTHROPIC_API_KEY")
	v.BindEnv("ai.keys.openai", "AUTOFILL_AI_KEYS_OPENAI", "OPENAI_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "gemini", "google", "claude", "anthropic", "openai", "gpt":
	default:
		return fmt.Errorf("unknown ai.provider %q (supported: gemini, claude, openai)", c.AI.Provider)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown logger.format %q (supported: console, json)", c.Logger.Format)
	}
	if c.Browser.Width < 0 || c.Browser.Height < 0 {
		return errors.New("browser.width and browser.height must not be negative")
	}
	if c.History.MaxSize <= 0 || c.History.HintSize <= 0 {
		return errors.New("history.max_size and history.hint_size must be positive")
	}
	return nil
}
