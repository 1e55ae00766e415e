// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultFeedURL is the breaking-news endpoint checked by the poller.
const DefaultFeedURL = "https://www.tagesschau.de/api2"

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	FeedURL          string
	PollInterval     time.Duration
	AdminUsers       []int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/bot.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	feedURL := os.Getenv("FEED_URL")
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	interval := time.Minute
	if raw := os.Getenv("POLL_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < time.Second {
			return nil, fmt.Errorf("invalid POLL_INTERVAL %q", raw)
		}
		interval = d
	}

	var admins []int64
	if raw := os.Getenv("ADMIN_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ADMIN_USERS: %w", s, err)
			}
			admins = append(admins, uid)
		}
	}

	return &Config{
		TelegramBotToken: token,
		DatabasePath:     dbPath,
		LogLevel:         logLevel,
		FeedURL:          feedURL,
		PollInterval:     interval,
		AdminUsers:       admins,
	}, nil
}

// IsAdmin checks whether a user ID is in the admin allow-list.
// The list is empty by default, so nobody can force a check cycle
// unless ADMIN_USERS is set.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUsers {
		if id == userID {
			return true
		}
	}
	return false
}
