package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/infrastructure/storage"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	TelegramToken     string
	AllowEmptySecrets bool

	BackendBaseURL   string
	BackendAuthToken string
	GeminiAPIKey     string

	CatalogXLSXPath string
	CatalogPageSize int

	PostgresDSN  string
	DeviceDBPath string

	PaymentPollInterval time.Duration
	SendCooldown        time.Duration
	MaxContextSize      int
	MetricsAddr         string

	// Orders group: tasdiqlangan to'lovlar shu yerga yuboriladi
	OrdersChatID   int64
	OrdersThreadID int
}

func parseChatTarget(raw string) (int64, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, nil
	}
	// Inline kommentariyalarni qo'llab-quvvatlash: "-100.../4  # izoh"
	if idx := strings.Index(raw, "#"); idx >= 0 {
		raw = strings.TrimSpace(raw[:idx])
	}
	parts := strings.Split(raw, "/")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("noto'g'ri format, misol: -1001234567890 yoki -1001234567890/2")
	}

	chatID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	if chatID > 0 {
		chatID = -chatID
	}

	threadID := 0
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		tid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("topic ID noto'g'ri: %v", err)
		}
		if tid < 0 {
			tid = -tid
		}
		threadID = tid
	}
	return chatID, threadID, nil
}

// defaultDeviceDBPath device store uchun default yo'l.
// Avval DEVICE_DB_PATH env, keyin foydalanuvchi config papkasi.
func defaultDeviceDBPath() string {
	if dbPath := strings.TrimSpace(os.Getenv("DEVICE_DB_PATH")); dbPath != "" {
		return dbPath
	}
	if cfgDir, err := os.UserConfigDir(); err == nil && cfgDir != "" {
		return filepath.Join(cfgDir, "storefront-chat", "device.db")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".storefront-chat", "device.db")
	}
	return "device.db"
}

// postgresDSNFromEnv: DATABASE_URL, POSTGRES_DSN, keyin POSTGRES_HOST/... qismlari
func postgresDSNFromEnv() string {
	for _, key := range []string{"DATABASE_URL", "POSTGRES_DSN"} {
		if dsn := strings.TrimSpace(os.Getenv(key)); dsn != "" {
			return dsn
		}
	}
	return storage.PostgresParams{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     os.Getenv("POSTGRES_PORT"),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		DBName:   os.Getenv("POSTGRES_DB"),
		SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
	}.DSN()
}

// Load konfiguratsiyani yuklash
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	config := &Config{
		TelegramToken:       strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		AllowEmptySecrets:   getEnvBool("ALLOW_EMPTY_SECRETS", false),
		BackendBaseURL:      strings.TrimSpace(os.Getenv("BACKEND_BASE_URL")),
		BackendAuthToken:    strings.TrimSpace(os.Getenv("BACKEND_AUTH_TOKEN")),
		GeminiAPIKey:        strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		CatalogXLSXPath:     strings.TrimSpace(os.Getenv("CATALOG_XLSX_PATH")),
		CatalogPageSize:     getEnvInt("CATALOG_PAGE_SIZE", constants.DefaultCatalogPageSize),
		PostgresDSN:         postgresDSNFromEnv(),
		DeviceDBPath:        defaultDeviceDBPath(),
		PaymentPollInterval: getEnvDuration("PAYMENT_POLL_INTERVAL", constants.DefaultPaymentPollInterval),
		SendCooldown:        getEnvDuration("SEND_COOLDOWN", constants.DefaultSendCooldown),
		MaxContextSize:      getEnvInt("MAX_CONTEXT_SIZE", constants.DefaultMaxContextSize),
		MetricsAddr:         strings.TrimSpace(os.Getenv("METRICS_ADDR")),
	}

	if raw := os.Getenv("ORDERS_CHAT_ID"); raw != "" {
		chatID, threadID, err := parseChatTarget(raw)
		if err != nil {
			return nil, fmt.Errorf("ORDERS_CHAT_ID noto'g'ri formatda: %v", err)
		}
		config.OrdersChatID = chatID
		config.OrdersThreadID = threadID
	}

	if config.CatalogPageSize <= 0 {
		return nil, fmt.Errorf("CATALOG_PAGE_SIZE musbat bo'lishi kerak")
	}
	if config.PaymentPollInterval <= 0 {
		return nil, fmt.Errorf("PAYMENT_POLL_INTERVAL musbat bo'lishi kerak")
	}

	// Validatsiya
	if !config.AllowEmptySecrets {
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable bo'sh")
		}
		if config.BackendBaseURL == "" && config.GeminiAPIKey == "" {
			return nil, fmt.Errorf("BACKEND_BASE_URL yoki GEMINI_API_KEY kerak")
		}
		if config.BackendBaseURL == "" && config.CatalogXLSXPath == "" {
			return nil, fmt.Errorf("BACKEND_BASE_URL yoki CATALOG_XLSX_PATH kerak")
		}
	}

	return config, nil
}

// UsesBackend reports whether catalog, chat and payments go through the REST backend.
func (c *Config) UsesBackend() bool {
	return c.BackendBaseURL != ""
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration "5s", "1m" yoki sekundlar soni ("5")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
