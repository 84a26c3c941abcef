package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"jk-calendar/internal/email"
)

const DEFAULT_SHARE_BASE_URL = "http://localhost:8080"
const QR_IMAGE_SIZE = 512

type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// Address for the HTTP server, e.g. ":8080"
	Listen string `mapstructure:"listen"`

	// Base URL used when building event share links. May be relative,
	// e.g. /calendar/, or absolute, e.g. https://example.com/calendar/
	BaseURL string `mapstructure:"base_url"`

	// Seed fixture file for the `seed` command. Empty means built-in fixtures.
	SeedFile string `mapstructure:"seed_file"`

	// Per-request storage operation timeout in seconds.
	StoreTimeout uint `mapstructure:"store_timeout"`

	Storage Storage `mapstructure:"storage"`

	// Invite notification email configuration. Notifications are sent
	// only when the SMTP host is set.
	Email email.SMTPConfig `mapstructure:"email"`
}

var Cfg *Config

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig reads configuration from config.yaml and environment variables
// and returns a Config struct.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvPrefix("")

	if len(configFile) > 0 {
		for _, path := range configFile {
			v.SetConfigFile(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and env cover it
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	// DATABASE_URL selects the Postgres store, the convention most
	// hosting platforms follow.
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		v.SetDefault("storage.postgresql.url", dsn)
	}

	// Load configuration from environment variables
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Convert relative sqlite path to the instance folder
	if cfg.Storage.SQLite != nil && cfg.Storage.SQLite.Path != "" {
		if cfg.Storage.SQLite.Path == ":memory:" {
			// In-memory database, do nothing
		} else if !os.IsPathSeparator(cfg.Storage.SQLite.Path[0]) {
			cfg.Storage.SQLite.Path = fmt.Sprintf("%s/%s", getConfigPath(), cfg.Storage.SQLite.Path)
		}
	}

	Cfg = &cfg
	return &cfg, nil
}
