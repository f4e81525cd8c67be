package config

import (
	"testing"
	"time"
)

func TestParseChatTarget(t *testing.T) {
	tests := []struct {
		raw      string
		chatID   int64
		threadID int
		wantErr  bool
	}{
		{"", 0, 0, false},
		{"-1001234567890", -1001234567890, 0, false},
		{"1001234567890/4  # buyurtmalar", -1001234567890, 4, false},
		{"-100/-2", -100, 2, false},
		{"a/b/c", 0, 0, true},
		{"-100/x", 0, 0, true},
	}
	for _, tt := range tests {
		chatID, threadID, err := parseChatTarget(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseChatTarget(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if err == nil && (chatID != tt.chatID || threadID != tt.threadID) {
			t.Fatalf("parseChatTarget(%q) = %d/%d, want %d/%d", tt.raw, chatID, threadID, tt.chatID, tt.threadID)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ALLOW_EMPTY_SECRETS", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("PAYMENT_POLL_INTERVAL", "")
	t.Setenv("SEND_COOLDOWN", "7")
	t.Setenv("DEVICE_DB_PATH", "/tmp/x/device.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PaymentPollInterval != 5*time.Second {
		t.Fatalf("PaymentPollInterval = %v, want 5s", cfg.PaymentPollInterval)
	}
	if cfg.SendCooldown != 7*time.Second {
		t.Fatalf("SendCooldown = %v, want 7s", cfg.SendCooldown)
	}
	if cfg.DeviceDBPath != "/tmp/x/device.db" {
		t.Fatalf("DeviceDBPath = %q", cfg.DeviceDBPath)
	}
	if cfg.PostgresDSN != "" || cfg.UsesBackend() {
		t.Fatalf("expected memory stores and offline mode, got dsn=%q backend=%v", cfg.PostgresDSN, cfg.UsesBackend())
	}
}

func TestLoad_PostgresParts(t *testing.T) {
	t.Setenv("ALLOW_EMPTY_SECRETS", "1")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_DB", "storefront")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_SSLMODE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := "postgres://shop@db:5432/storefront?sslmode=disable"
	if cfg.PostgresDSN != want {
		t.Fatalf("PostgresDSN = %q, want %q", cfg.PostgresDSN, want)
	}
}

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Setenv("ALLOW_EMPTY_SECRETS", "false")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() without TELEGRAM_BOT_TOKEN should fail")
	}
}
