// Package config loads the application settings.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const EnvPrefix = "RESP_ATLAS"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type Config struct {
	Server          ServerConfig  `mapstructure:"server"`
	SourcesFile     string        `mapstructure:"sources_file"`
	DefaultSource   string        `mapstructure:"default_source"`
	PagesDir        string        `mapstructure:"pages_dir"`
	ContentDir      string        `mapstructure:"content_dir"`
	DbPath          string        `mapstructure:"db_path"`
	CacheSize       int           `mapstructure:"cache_size"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	LogLevel        string        `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("sources_file", "sources.ini")
	v.SetDefault("default_source", "weekly")
	v.SetDefault("pages_dir", "")
	v.SetDefault("content_dir", "content")
	v.SetDefault("db_path", "resp-atlas.db")
	v.SetDefault("cache_size", 256)
	v.SetDefault("refresh_interval", "0s")
	v.SetDefault("log_level", "info")
}

// LoadConfig reads profilePath when it is not empty, then applies
// RESP_ATLAS_* environment overrides (RESP_ATLAS_SERVER_PORT, ...).
func LoadConfig(profilePath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if profilePath != "" {
		v.SetConfigFile(profilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache size %d", c.CacheSize)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("invalid refresh interval %s", c.RefreshInterval)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Level falls back to info for an unparseable level.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
