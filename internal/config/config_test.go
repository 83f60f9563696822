package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOG_LEVEL", "TELEGRAM_BOT_TOKEN", "USER_CONFIG_FILE", "AUTHORIZED_USERS",
		"PAPERLESS_URL", "PAPERLESS_TOKEN", "PAPERLESS_AI_URL", "PAPERLESS_AI_TOKEN",
		"POLL_INTERVAL", "TRACKING_DEADLINE", "HTTP_TIMEOUT", "METRICS_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadGlobalMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("AUTHORIZED_USERS", "100, 200,300")
	t.Setenv("PAPERLESS_URL", "http://paperless.local")
	t.Setenv("PAPERLESS_TOKEN", "api-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AuthMode != AuthModeGlobal {
		t.Fatalf("expected global mode, got %s", cfg.AuthMode)
	}
	if len(cfg.AuthorizedUsers) != 3 || cfg.AuthorizedUsers[1] != 200 {
		t.Fatalf("unexpected user list %v", cfg.AuthorizedUsers)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Fatalf("expected default poll interval, got %s", cfg.PollInterval)
	}
	if cfg.TrackingDeadline != 2*time.Minute {
		t.Fatalf("expected default deadline, got %s", cfg.TrackingDeadline)
	}
	if cfg.MetricsPort != "9090" {
		t.Fatalf("expected default metrics port, got %s", cfg.MetricsPort)
	}
}

func TestLoadUserScopedModeWinsOverGlobal(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("USER_CONFIG_FILE", "/etc/bot/users.yaml")
	t.Setenv("AUTHORIZED_USERS", "100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AuthMode != AuthModeUserScoped {
		t.Fatalf("expected user_scoped mode, got %s", cfg.AuthMode)
	}
	if cfg.UserConfigFile != "/etc/bot/users.yaml" {
		t.Fatalf("unexpected config file %q", cfg.UserConfigFile)
	}
}

func TestLoadRequiresBotToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTHORIZED_USERS", "100")
	t.Setenv("PAPERLESS_URL", "http://p")
	t.Setenv("PAPERLESS_TOKEN", "t")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without bot token")
	}
}

func TestLoadRequiresSomeAuthMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without any auth configuration")
	}
}

func TestLoadGlobalModeRequiresBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("AUTHORIZED_USERS", "100")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without paperless url in global mode")
	}
}

func TestLoadRejectsBadUserIDs(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("AUTHORIZED_USERS", "100,abc")
	t.Setenv("PAPERLESS_URL", "http://p")
	t.Setenv("PAPERLESS_TOKEN", "t")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric user id")
	}
}

func TestLoadRejectsDeadlineShorterThanInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("AUTHORIZED_USERS", "100")
	t.Setenv("PAPERLESS_URL", "http://p")
	t.Setenv("PAPERLESS_TOKEN", "t")
	t.Setenv("POLL_INTERVAL", "10s")
	t.Setenv("TRACKING_DEADLINE", "5s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when deadline is shorter than poll interval")
	}
}

func TestLoadOverridesDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("AUTHORIZED_USERS", "100")
	t.Setenv("PAPERLESS_URL", "http://p")
	t.Setenv("PAPERLESS_TOKEN", "t")
	t.Setenv("POLL_INTERVAL", "1s")
	t.Setenv("TRACKING_DEADLINE", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PollInterval != time.Second || cfg.TrackingDeadline != 45*time.Second {
		t.Fatalf("unexpected durations %s / %s", cfg.PollInterval, cfg.TrackingDeadline)
	}
}
