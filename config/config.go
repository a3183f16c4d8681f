// Package config loads service configuration from an optional YAML file
// plus WGW_-prefixed environment variables. The .env file, if present,
// is loaded into the environment by main before this runs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Database struct {
	Host        string `mapstructure:"host"`
	Port        string `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	SSLMode     string `mapstructure:"sslmode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type Ledger struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

type Scheduler struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Host        string    `mapstructure:"host"`
	Port        string    `mapstructure:"port"`
	Environment string    `mapstructure:"environment"`
	APIKey      string    `mapstructure:"api_key"`
	Database    Database  `mapstructure:"database"`
	Ledger      Ledger    `mapstructure:"ledger"`
	Scheduler   Scheduler `mapstructure:"scheduler"`
}

// Load reads configuration and returns both the typed config and the
// viper instance, which the credential resolver consumes directly for
// the per-provider table.
func Load(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("WGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", "3000")
	v.SetDefault("environment", "staging")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("ledger.timeout", 10*time.Second)
	v.SetDefault("ledger.max_attempts", 3)
	v.SetDefault("ledger.backoff", 200*time.Millisecond)
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval", 2*time.Minute)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.Environment != "staging" && cfg.Environment != "production" {
		return nil, nil, fmt.Errorf("config: invalid environment %q", cfg.Environment)
	}
	return &cfg, v, nil
}
