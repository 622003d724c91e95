// Package config loads clefsettings CLI configuration from defaults, a config
// file, CLEF_* environment variables and command line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	settings "github.com/goliatone/go-clef-settings"
)

// Config holds CLI configuration
type Config struct {
	DBPath       string `mapstructure:"db_path"`
	LogLevel     string `mapstructure:"log_level"`
	OptionName   string `mapstructure:"option_name"`
	PluginFile   string `mapstructure:"plugin_file"`
	NetworkAdmin bool   `mapstructure:"network_admin"`
	Actor        string `mapstructure:"actor"`

	Rules    RulesConfig    `mapstructure:"rules"`
	Activity ActivityConfig `mapstructure:"activity"`
}

// RulesConfig selects the rule engine and the optional password rule
type RulesConfig struct {
	Engine       string        `mapstructure:"engine"` // expr, cel, js
	PasswordRule string        `mapstructure:"password_rule"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// ActivityConfig controls the setting change audit trail
type ActivityConfig struct {
	Enable  bool   `mapstructure:"enable"`
	Channel string `mapstructure:"channel"`
	SiteID  string `mapstructure:"site_id"`
}

// Load loads configuration from various sources
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := bindFlags(cmd, v); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if flag := cmd.Flags().Lookup("config"); flag != nil && flag.Value.String() != "" {
		v.SetConfigFile(flag.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("CLEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "./clef.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("option_name", settings.DefaultOptionName)
	v.SetDefault("plugin_file", settings.DefaultPluginFile)
	v.SetDefault("network_admin", false)
	v.SetDefault("actor", "")

	v.SetDefault("rules.engine", "expr")
	v.SetDefault("rules.password_rule", "")
	v.SetDefault("rules.cache_ttl", 10*time.Minute)

	v.SetDefault("activity.enable", true)
	v.SetDefault("activity.channel", "settings")
	v.SetDefault("activity.site_id", "")
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := map[string]string{
		"db":            "db_path",
		"log-level":     "log_level",
		"option-name":   "option_name",
		"network-admin": "network_admin",
		"actor":         "actor",
		"engine":        "rules.engine",
		"password-rule": "rules.password_rule",
	}

	for flag, key := range flags {
		pflag := cmd.Flags().Lookup(flag)
		if pflag == nil {
			continue
		}
		if err := v.BindPFlag(key, pflag); err != nil {
			return err
		}
	}

	return nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("db_path is required: specify via --db flag, config file, or CLEF_DB_PATH environment variable")
	}

	switch strings.ToLower(cfg.Rules.Engine) {
	case "", "expr", "cel", "js", "javascript":
	default:
		return fmt.Errorf("unknown rules engine %q", cfg.Rules.Engine)
	}

	if cfg.Rules.CacheTTL < 0 {
		return fmt.Errorf("rules.cache_ttl must not be negative")
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return nil
}
