package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingSecret is returned when QUIZ_SECRET is not configured.
var ErrMissingSecret = errors.New("QUIZ_SECRET is not set")

// Config holds the application configuration.
type Config struct {
	QuizSecret string `mapstructure:"QUIZ_SECRET"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogFile    string `mapstructure:"LOG_FILE"`

	ChainDeadlineSeconds   int    `mapstructure:"CHAIN_DEADLINE_SECONDS"`
	SubmitTimeoutSeconds   int    `mapstructure:"SUBMIT_TIMEOUT_SECONDS"`
	PageLoadTimeoutSeconds int    `mapstructure:"PAGE_LOAD_TIMEOUT_SECONDS"`
	MaxConcurrency         int    `mapstructure:"MAX_CONCURRENCY"`
	UserAgent              string `mapstructure:"USER_AGENT"`
	ChromePath             string `mapstructure:"CHROME_PATH"`

	// An empty RedisAddr disables the in-flight chain guard.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
}

func (c *Config) ChainDeadline() time.Duration {
	return time.Duration(c.ChainDeadlineSeconds) * time.Second
}

func (c *Config) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

func (c *Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSeconds) * time.Second
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Attempt to read the env file, but don't fail if it's not present.
	// Production deployments configure everything through the environment.
	_ = v.ReadInConfig()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	v.SetDefault("QUIZ_SECRET", "")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("CHAIN_DEADLINE_SECONDS", 180)
	v.SetDefault("SUBMIT_TIMEOUT_SECONDS", 50)
	v.SetDefault("PAGE_LOAD_TIMEOUT_SECONDS", 60)
	v.SetDefault("MAX_CONCURRENCY", 4)
	v.SetDefault("USER_AGENT", "")
	v.SetDefault("CHROME_PATH", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.QuizSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.MaxConcurrency < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENCY must be positive, got %d", cfg.MaxConcurrency)
	}
	return &cfg, nil
}
