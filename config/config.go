// Package config loads service configuration and provides a typed Config used across the bot.
// Values come from defaults, then an optional YAML file named by BOT_CONFIG_FILE,
// then environment variables, with later sources winning. The Discord token is
// env-only so it never lands in a config file.
// For required sync credentials, use ValidateSyncReady.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Discord
	DiscordToken string
	ChannelID    string

	// Schedule source
	ScheduleURL string
	Timezone    string

	// Sync behavior
	RefreshSpec string
	PostDelay   time.Duration

	// HTTP API
	HTTPAddr string
}

// fileConfig is the YAML shape of the optional config file. Durations are
// strings ("1s", "750ms") so the file stays hand-editable.
type fileConfig struct {
	ChannelID   string `yaml:"channel_id"`
	ScheduleURL string `yaml:"schedule_url"`
	Timezone    string `yaml:"timezone"`
	Refresh     string `yaml:"refresh"`
	PostDelay   string `yaml:"post_delay"`
	HTTPAddr    string `yaml:"http_addr"`
}

// Load builds the configuration. It doesn't fail when Discord credentials are
// missing; use ValidateSyncReady() when you require channel mutation. Preview
// endpoints only need SCHEDULE_URL.
func Load() (*Config, error) {
	cfg := &Config{
		Timezone:    "America/New_York",
		RefreshSpec: "@every 30m",
		PostDelay:   time.Second,
		HTTPAddr:    ":8080",
	}

	if path := os.Getenv("BOT_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")
	if v := os.Getenv("DISCORD_CHANNEL_ID"); v != "" {
		cfg.ChannelID = v
	}
	if v := os.Getenv("SCHEDULE_URL"); v != "" {
		cfg.ScheduleURL = v
	}
	if v := os.Getenv("SCHEDULE_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("REFRESH_SCHEDULE"); v != "" {
		cfg.RefreshSpec = v
	}
	if v := os.Getenv("POST_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid POST_DELAY (duration): %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid POST_DELAY: negative")
		}
		cfg.PostDelay = d
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}

	return cfg, nil
}

// applyFile layers a YAML config file over the defaults.
func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if fc.ChannelID != "" {
		c.ChannelID = fc.ChannelID
	}
	if fc.ScheduleURL != "" {
		c.ScheduleURL = fc.ScheduleURL
	}
	if fc.Timezone != "" {
		c.Timezone = fc.Timezone
	}
	if fc.Refresh != "" {
		c.RefreshSpec = fc.Refresh
	}
	if fc.PostDelay != "" {
		d, err := time.ParseDuration(fc.PostDelay)
		if err != nil {
			return fmt.Errorf("invalid post_delay in %s: %w", path, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid post_delay in %s: negative", path)
		}
		c.PostDelay = d
	}
	if fc.HTTPAddr != "" {
		c.HTTPAddr = fc.HTTPAddr
	}
	return nil
}

// ValidateSyncReady checks required fields for the channel-mutating path.
func (c *Config) ValidateSyncReady() error {
	if c.DiscordToken == "" || c.ChannelID == "" || c.ScheduleURL == "" {
		return fmt.Errorf("missing sync env: require DISCORD_TOKEN, DISCORD_CHANNEL_ID, SCHEDULE_URL")
	}
	return nil
}
