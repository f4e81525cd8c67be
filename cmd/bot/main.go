package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/yourusername/storefront-chat/config"
	"github.com/yourusername/storefront-chat/internal/delivery/telegram"
	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/infrastructure/backend"
	"github.com/yourusername/storefront-chat/internal/infrastructure/gemini"
	"github.com/yourusername/storefront-chat/internal/infrastructure/storage"
	"github.com/yourusername/storefront-chat/internal/metrics"
	"github.com/yourusername/storefront-chat/internal/usecase"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

func main() {
	// Logger ni ishga tushirish
	logger.Init()
	logger.InfoLogger.Println("🚀 Ilova ishga tushmoqda...")

	// Konfiguratsiyani yuklash
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Konfiguratsiya yuklanmadi: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AllowEmptySecrets && isEmptyOrDisabled(cfg.TelegramToken) {
		logger.InfoLogger.Println("TELEGRAM_BOT_TOKEN yo'q. Bot vaqtincha ishga tushmaydi.")
		<-ctx.Done()
		return
	}

	// 1. Metrics
	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, collector)
	}

	// 2. Storage (Postgres yoki memory, device state SQLite da)
	stores, err := storage.OpenStores(storage.StoreOptions{
		PostgresDSN:      cfg.PostgresDSN,
		DeviceDBPath:     cfg.DeviceDBPath,
		HistoryMaxMemory: cfg.MaxContextSize,
	})
	if err != nil {
		log.Fatalf("❌ Storage ochilmadi: %v", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.WarnLogger.Printf("Storage yopishda xatolik: %v", err)
		}
	}()
	logger.InfoLogger.Println("✅ Storage tayyor")

	// 3. Katalog, transport va to'lovlar
	index := usecase.NewCatalogIndex()
	deps := usecase.WidgetDeps{
		Device:    stores.Device,
		History:   stores.Chat,
		Index:     index,
		Extractor: usecase.NewExtractor(constants.DefaultExtractMemoSize, collector),
		Metrics:   collector,
	}

	if cfg.UsesBackend() {
		client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendAuthToken, nil)
		deps.Transport = client
		deps.Catalog = client
		deps.Payments = client
		deps.ServerCart = client.CartStore()
		logger.InfoLogger.Printf("✅ Backend client tayyor: %s", cfg.BackendBaseURL)
	} else {
		catalog, err := storage.OpenXLSXCatalog(cfg.CatalogXLSXPath)
		if err != nil {
			log.Fatalf("❌ Katalog fayli o'qilmadi: %v", err)
		}
		transport, err := gemini.NewTransport(ctx, cfg.GeminiAPIKey, index.Items)
		if err != nil {
			log.Fatalf("❌ Gemini client yaratilmadi: %v", err)
		}
		defer transport.Close()
		deps.Transport = transport
		deps.Catalog = catalog
		deps.ServerCart = stores.Cart
		logger.InfoLogger.Printf("✅ Offline rejim: %s + %s", cfg.CatalogXLSXPath, constants.GeminiModelName)
	}

	index.Fill(ctx, deps.Catalog, cfg.CatalogPageSize)
	collector.CatalogSize(string(entity.KindProduct), index.Len(entity.KindProduct))
	collector.CatalogSize(string(entity.KindCombo), index.Len(entity.KindCombo))

	// 4. Telegram bot handler
	botHandler, err := telegram.NewBotHandler(cfg.TelegramToken, telegram.Options{
		Widget: deps,
		WidgetOptions: usecase.WidgetOptions{
			AuthToken:       cfg.BackendAuthToken,
			SendCooldown:    cfg.SendCooldown,
			PollInterval:    cfg.PaymentPollInterval,
			HistoryLimit:    cfg.MaxContextSize,
			CatalogPageSize: cfg.CatalogPageSize,
		},
		Catalog:        deps.Catalog,
		OrdersChatID:   cfg.OrdersChatID,
		OrdersThreadID: cfg.OrdersThreadID,
	})
	if err != nil {
		log.Fatalf("❌ Bot handler yaratilmadi: %v", err)
	}
	logger.InfoLogger.Printf("✅ Telegram bot tayyor: @%s", botHandler.GetBotUsername())
	logger.InfoLogger.Println("🤖 Bot ishlayapti. To'xtatish uchun Ctrl+C ni bosing.")

	if err := botHandler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorLogger.Printf("❌ Bot xatosi: %v", err)
	}
	logger.InfoLogger.Println("✅ Bot to'xtatildi.")
}

func serveMetrics(ctx context.Context, addr string, collector *metrics.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.InfoLogger.Printf("📈 Metrics: http://%s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorLogger.Printf("Metrics server xatosi: %v", err)
	}
}

func isEmptyOrDisabled(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	return strings.EqualFold(value, "disabled")
}
