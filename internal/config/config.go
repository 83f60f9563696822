package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthMode string

const (
	AuthModeGlobal     AuthMode = "global"
	AuthModeUserScoped AuthMode = "user_scoped"
)

type Config struct {
	LogLevel string

	TelegramBotToken string

	AuthMode        AuthMode
	AuthorizedUsers []int64
	UserConfigFile  string

	PaperlessURL     string
	PaperlessToken   string
	PaperlessAIURL   string
	PaperlessAIToken string

	PollInterval     time.Duration
	TrackingDeadline time.Duration

	HTTPTimeout time.Duration

	MetricsPort string
}

// Load reads configuration from the environment. The authorization mode
// is detected the same way the deployment expects it: a user config file
// wins over the global authorized-users list.
func Load() (Config, error) {
	cfg := Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		UserConfigFile: os.Getenv("USER_CONFIG_FILE"),

		PaperlessURL:     os.Getenv("PAPERLESS_URL"),
		PaperlessToken:   os.Getenv("PAPERLESS_TOKEN"),
		PaperlessAIURL:   os.Getenv("PAPERLESS_AI_URL"),
		PaperlessAIToken: os.Getenv("PAPERLESS_AI_TOKEN"),

		PollInterval:     mustEnvDuration("POLL_INTERVAL", 3*time.Second),
		TrackingDeadline: mustEnvDuration("TRACKING_DEADLINE", 2*time.Minute),

		HTTPTimeout: mustEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		MetricsPort: mustEnv("METRICS_PORT", "9090"),
	}

	if cfg.TelegramBotToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	switch {
	case cfg.UserConfigFile != "":
		cfg.AuthMode = AuthModeUserScoped
	case os.Getenv("AUTHORIZED_USERS") != "":
		cfg.AuthMode = AuthModeGlobal
		users, err := parseUserIDs(os.Getenv("AUTHORIZED_USERS"))
		if err != nil {
			return Config{}, fmt.Errorf("parse AUTHORIZED_USERS: %w", err)
		}
		cfg.AuthorizedUsers = users
		if cfg.PaperlessURL == "" {
			return Config{}, fmt.Errorf("PAPERLESS_URL is required in global mode")
		}
		if cfg.PaperlessToken == "" {
			return Config{}, fmt.Errorf("PAPERLESS_TOKEN is required in global mode")
		}
	default:
		return Config{}, fmt.Errorf("set either USER_CONFIG_FILE or AUTHORIZED_USERS")
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.TrackingDeadline < cfg.PollInterval {
		return Config{}, fmt.Errorf("TRACKING_DEADLINE must be at least POLL_INTERVAL")
	}

	return cfg, nil
}

func parseUserIDs(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no user ids in %q", raw)
	}
	return ids, nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
