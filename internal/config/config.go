// Package config loads server configuration from defaults, an optional
// yaml file, and BSTODO_* environment variables, in increasing
// precedence.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to start.
type Config struct {
	Addr        string        `mapstructure:"addr"`
	DBPath      string        `mapstructure:"db_path"`
	TokenSecret string        `mapstructure:"token_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	LogLevel    string        `mapstructure:"log_level"`
}

// Load reads configuration. A missing config file is not an error;
// defaults and environment variables are enough to run.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BSTODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("bstodo")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".bstodo"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("token_secret", "change-me-in-production")
	v.SetDefault("token_ttl", 7*24*time.Hour)
	v.SetDefault("log_level", "info")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bstodo/bstodo.db"
	}
	return filepath.Join(home, ".bstodo", "bstodo.db")
}
