package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	DB      DBConfig      `mapstructure:"db"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// BackendConfig selects and configures the data service
type BackendConfig struct {
	Provider       string        `mapstructure:"provider"` // rest, postgres, mysql, memory
	URL            string        `mapstructure:"url"`
	APIKeyEnv      string        `mapstructure:"api_key_env"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

type SessionConfig struct {
	File string `mapstructure:"file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ResolveAPIKey returns the configured key, falling back to the named environment variable
func (b BackendConfig) ResolveAPIKey() string {
	if b.APIKey != "" {
		return b.APIKey
	}
	if b.APIKeyEnv != "" {
		return os.Getenv(b.APIKeyEnv)
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("backend.provider", "rest")
	// Keys without a real default still need registering so env overrides reach Unmarshal
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.api_key_env", "DOEMART_ANON_KEY")
	v.SetDefault("backend.request_timeout", 10*time.Second)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.maxOpenConns", 10)
	v.SetDefault("session.file", filepath.Join(home, ".doemart", "session.yaml"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
}

// LoadConfig loads configuration from config.yaml and environment variables.
// A missing config file leaves the defaults in place.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.doemart/")
	v.AddConfigPath("/etc/doemart/")

	// Enable environment variable override with DOEMART_ prefix
	v.SetEnvPrefix("DOEMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings each provider needs
func (c *Config) Validate() error {
	switch c.Backend.Provider {
	case "rest":
		if c.Backend.URL == "" {
			return fmt.Errorf("backend.url is required for the rest provider")
		}
	case "postgres", "mysql":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for the %s provider", c.Backend.Provider)
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported backend provider: %s", c.Backend.Provider)
	}

	if c.Backend.RequestTimeout <= 0 {
		return fmt.Errorf("backend.request_timeout must be positive")
	}

	return nil
}
