// Package config manages application configuration from config.yaml,
// BOT_* environment variables, and default values.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config defines the application configuration for all components: logging,
// database, the Telegram surface, quote snagging, stats processing, and the
// scheduler.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Quotes    QuotesConfig    `mapstructure:"quotes"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls log level and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TelegramConfig holds the bot token and operator settings.
type TelegramConfig struct {
	Token        string `mapstructure:"token"    validate:"required"`
	AdminID      int64  `mapstructure:"admin_id" validate:"required,gt=0"`
	DigestChatID int64  `mapstructure:"digest_chat_id"`
}

// QuotesConfig tunes the quote sampler.
type QuotesConfig struct {
	Chance             float64 `mapstructure:"chance"          validate:"min=0,max=1"`
	SilentChance       float64 `mapstructure:"silent_chance"   validate:"min=0,max=1"`
	MinDelayHours      int     `mapstructure:"min_delay_hours" validate:"min=0"`
	AllowNotifications bool    `mapstructure:"allow_notifications"`
}

// StatsConfig tunes message processing.
type StatsConfig struct {
	// CommandPrefix marks lines that are bot commands; the topic scorer
	// excludes them from a user's message history.
	CommandPrefix string `mapstructure:"command_prefix" validate:"required"`

	// Reactions maps a lowercase substring to a canned reply sent when an
	// inbound message contains it.
	Reactions map[string]string `mapstructure:"reactions"`

	// TopicLimit caps how many topics are reported per request.
	TopicLimit int `mapstructure:"topic_limit" validate:"min=1"`
}

// SchedulerConfig holds per-task scheduling settings keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a scheduled task and sets its cron schedule.
type TaskConfig struct {
	Schedule string `mapstructure:"schedule"`
	Enabled  bool   `mapstructure:"enabled"`
}

// Validate checks the configuration against the struct validation tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
