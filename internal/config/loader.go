package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultDBPath   = "snagbot.db"

	DefaultQuoteChance        = 0.015
	DefaultSilentQuoteChance  = 0.6
	DefaultQuoteMinDelayHours = 4

	DefaultCommandPrefix = "/"
	DefaultTopicLimit    = 10
)

// Load reads configuration from, in order of precedence:
// 1. BOT_* environment variables
// 2. the config file (config.yaml, or the given path if non-empty)
// 3. default values
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", false)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("quotes.chance", DefaultQuoteChance)
	v.SetDefault("quotes.silent_chance", DefaultSilentQuoteChance)
	v.SetDefault("quotes.min_delay_hours", DefaultQuoteMinDelayHours)
	v.SetDefault("quotes.allow_notifications", true)

	v.SetDefault("stats.command_prefix", DefaultCommandPrefix)
	v.SetDefault("stats.topic_limit", DefaultTopicLimit)

	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 0 4 * * *")
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.stats_digest.schedule", "0 0 18 * * *")
	v.SetDefault("scheduler.tasks.stats_digest.enabled", false)
}
