package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults for the upstream chat-completion call.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 2000
	DefaultLogLevel    = "warn"
)

// ErrMissingAPIKey is returned by Validate when no API key was configured
var ErrMissingAPIKey = errors.New("OpenAI API key not found: set the OPENAI_API_KEY environment variable or pass --api-key")

// Config represents the application configuration
type Config struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
	StrictPDF   bool    `mapstructure:"strict_pdf"`
	LogLevel    string  `mapstructure:"log_level"`
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	"api_key":   "OPENAI_API_KEY",
	"base_url":  "OPENAI_BASE_URL",
	"model":     "OPENAI_MODEL",
	"log_level": "LOG_LEVEL",
}

// flagBindings maps config keys to command line flag names
var flagBindings = map[string]string{
	"api_key":    "api-key",
	"base_url":   "base-url",
	"model":      "model",
	"strict_pdf": "strict-pdf",
	"log_level":  "log-level",
}

// LoadConfig resolves configuration from, in increasing precedence: defaults,
// the optional TOML file at configPath, environment variables and any changed
// flags in flags. flags may be nil.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("temperature", DefaultTemperature)
	v.SetDefault("max_tokens", DefaultMaxTokens)
	v.SetDefault("strict_pdf", false)
	v.SetDefault("log_level", DefaultLogLevel)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if flags != nil {
		for key, name := range flagBindings {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks the fields the pipeline cannot run without
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from the given .env files (".env" when none
// are given) into the process environment. Missing files are skipped and
// variables already set are left alone.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
