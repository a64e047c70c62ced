// Package config handles loading of runtime settings and mapping files.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/BartekS5/xtravels-migrate/pkg/database"
)

// EnvPrefix scopes environment variables, e.g. XTRAVELS_DSN.
const EnvPrefix = "XTRAVELS"

// Config holds all settings, merged from flags, environment variables
// (populated from .env in main) and defaults.
type Config struct {
	// Namespace overrides the mapping set's namespace when set.
	Namespace   string `mapstructure:"namespace"`
	OutDir      string `mapstructure:"out"`
	MappingFile string `mapstructure:"mapping"`
	DryRun      bool   `mapstructure:"dry-run"`
	EmptyHeader bool   `mapstructure:"empty-header"`

	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Database string `mapstructure:"database"`

	ServiceURL string `mapstructure:"service-url"`
	Lang       string `mapstructure:"lang"`

	LogJSON bool `mapstructure:"log-json"`
	Debug   bool `mapstructure:"debug"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("namespace", "")
	v.SetDefault("out", ".")
	v.SetDefault("mapping", "")
	v.SetDefault("dry-run", false)
	v.SetDefault("empty-header", false)
	v.SetDefault("driver", database.DriverSQLite)
	v.SetDefault("dsn", "")
	v.SetDefault("database", "sflight")
	v.SetDefault("service-url", "")
	v.SetDefault("lang", "en")
	v.SetDefault("log-json", false)
	v.SetDefault("debug", false)
}

// LoadConfig merges flags (may be nil), environment and defaults.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case database.DriverSQLite, database.DriverSQLServer, database.DriverPostgres, database.DriverMySQL, database.DriverMongo:
	default:
		return fmt.Errorf("unsupported source driver %q", c.Driver)
	}
	if c.Driver != database.DriverSQLite && c.DSN == "" {
		return fmt.Errorf("driver %s requires a dsn", c.Driver)
	}
	return nil
}
