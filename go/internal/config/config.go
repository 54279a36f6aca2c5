package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the bot settings. Values come from an optional YAML file and
// are then overridden by environment variables.
type Config struct {
	Discord struct {
		Token        string   `yaml:"-"`
		GuildID      string   `yaml:"guild_id"`
		ChannelID    string   `yaml:"channel_id"`
		AdminRoleIDs []string `yaml:"admin_role_ids"`
	} `yaml:"discord"`

	Souldraw struct {
		RefreshInterval    time.Duration `yaml:"refresh_interval"`
		MaxRefreshFailures int           `yaml:"max_refresh_failures"`
		CallTimeout        time.Duration `yaml:"call_timeout"`
	} `yaml:"souldraw"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Events struct {
		NATSURL       string `yaml:"nats_url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"events"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	var c Config
	c.Souldraw.RefreshInterval = 15 * time.Second
	c.Souldraw.MaxRefreshFailures = 3
	c.Souldraw.CallTimeout = 10 * time.Second
	c.Server.Port = "3000"
	c.Events.StreamName = "SOULDRAW_EVENTS"
	c.Events.SubjectPrefix = "souldraw.events"
	c.LogLevel = "info"
	return c
}

// Load reads path (when non-empty) over the defaults and applies the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Discord.Token = getEnv("DISCORD_TOKEN", c.Discord.Token)
	c.Discord.GuildID = getEnv("DISCORD_GUILD_ID", c.Discord.GuildID)
	c.Discord.ChannelID = getEnv("CHANNEL_ID", c.Discord.ChannelID)
	if roles := getEnv("DISCORD_ADMIN_ROLES", ""); roles != "" {
		c.Discord.AdminRoleIDs = splitList(roles)
	}
	c.Souldraw.RefreshInterval = getEnvAsDuration("SOULDRAW_REFRESH_INTERVAL", c.Souldraw.RefreshInterval)
	c.Souldraw.MaxRefreshFailures = getEnvAsInt("SOULDRAW_MAX_REFRESH_FAILURES", c.Souldraw.MaxRefreshFailures)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Events.NATSURL = getEnv("NATS_URL", c.Events.NATSURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks the settings that have no usable fallback.
func (c Config) Validate() error {
	var errs []error
	if c.Souldraw.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("refresh_interval must be positive"))
	}
	if c.Souldraw.MaxRefreshFailures <= 0 {
		errs = append(errs, fmt.Errorf("max_refresh_failures must be positive"))
	}
	if c.Server.Port == "" {
		errs = append(errs, fmt.Errorf("server port is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
