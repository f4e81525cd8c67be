package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/storefront-chat/internal/domain/repository"
	"github.com/yourusername/storefront-chat/internal/usecase"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

// botAPI is the part of *tgbotapi.BotAPI the handler sends through.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Options bot sozlamalari
type Options struct {
	Widget        usecase.WidgetDeps
	WidgetOptions usecase.WidgetOptions

	// Catalog export (/menu) uchun manba; bo'sh bo'lsa widget indexidan olinadi
	Catalog repository.CatalogSource

	OrdersChatID   int64
	OrdersThreadID int
}

// BotHandler Telegram bot handler: har bir chat uchun bitta ChatWidget
type BotHandler struct {
	api  *tgbotapi.BotAPI
	bot  botAPI
	opts Options

	widgetMu sync.Mutex
	widgets  map[int64]*chatSession

	waitingMu   sync.RWMutex
	waitingMsgs map[int64]waitingMessage

	workerPool *workerPool
}

type chatSession struct {
	widget   *usecase.ChatWidget
	lastUsed time.Time
}

type waitingMessage struct {
	ChatID    int64
	MessageID int
}

// NewBotHandler yangi bot handler yaratish
func NewBotHandler(token string, opts Options) (*BotHandler, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h := newBotHandler(api, opts)
	h.api = api
	logger.InfoLogger.Printf("🤖 Bot ulandi: @%s", api.Self.UserName)
	return h, nil
}

func newBotHandler(bot botAPI, opts Options) *BotHandler {
	if opts.Widget.Index == nil {
		opts.Widget.Index = usecase.NewCatalogIndex()
	}
	h := &BotHandler{
		bot:         bot,
		opts:        opts,
		widgets:     make(map[int64]*chatSession),
		waitingMsgs: make(map[int64]waitingMessage),
	}
	h.workerPool = newWorkerPool(h, defaultWorkerCount)
	return h
}

// GetBotUsername returns the bot's username from Telegram API state.
func (h *BotHandler) GetBotUsername() string {
	if h.api == nil {
		return ""
	}
	return h.api.Self.UserName
}

func deviceIDForChat(chatID int64) string {
	return fmt.Sprintf("tg_%d", chatID)
}

// widgetFor returns the mounted widget of a chat, creating it on first use.
func (h *BotHandler) widgetFor(ctx context.Context, chatID int64) (*usecase.ChatWidget, error) {
	h.widgetMu.Lock()
	if s, ok := h.widgets[chatID]; ok {
		s.lastUsed = time.Now()
		h.widgetMu.Unlock()
		return s.widget, nil
	}
	h.widgetMu.Unlock()

	opts := h.opts.WidgetOptions
	opts.DeviceID = deviceIDForChat(chatID)
	opts.OnPaymentConfirmed = func(orderID string) { h.onPaymentConfirmed(chatID, orderID) }
	opts.OnPaymentNotFound = func(orderID string) { h.onPaymentNotFound(chatID, orderID) }

	w := usecase.NewChatWidget(h.opts.Widget, opts)
	if err := w.Mount(ctx); err != nil {
		return nil, err
	}

	h.widgetMu.Lock()
	defer h.widgetMu.Unlock()
	if s, ok := h.widgets[chatID]; ok {
		// parallel mount yutqazdi
		go w.Teardown()
		s.lastUsed = time.Now()
		return s.widget, nil
	}
	h.widgets[chatID] = &chatSession{widget: w, lastUsed: time.Now()}
	return w, nil
}

func (h *BotHandler) onPaymentConfirmed(chatID int64, orderID string) {
	logger.InfoLogger.Printf("💰 To'lov tasdiqlandi: chat=%d order=%s", chatID, orderID)
	h.sendMessage(chatID, fmt.Sprintf("✅ Đã nhận thanh toán cho đơn %s. Cảm ơn bạn!", orderID))
	if h.opts.OrdersChatID != 0 {
		h.sendToThread(h.opts.OrdersChatID, h.opts.OrdersThreadID,
			fmt.Sprintf("💰 Đơn %s đã thanh toán (chat %d)", orderID, chatID))
	}
}

func (h *BotHandler) onPaymentNotFound(chatID int64, orderID string) {
	logger.WarnLogger.Printf("⚠️ Buyurtma topilmadi: chat=%d order=%s", chatID, orderID)
	h.sendMessage(chatID, fmt.Sprintf("⚠️ Không tìm thấy đơn %s. Vui lòng liên hệ nhà hàng.", orderID))
}

// shutdownWidgets tears every widget down; poll sessions stop without callbacks.
func (h *BotHandler) shutdownWidgets() {
	h.widgetMu.Lock()
	sessions := h.widgets
	h.widgets = make(map[int64]*chatSession)
	h.widgetMu.Unlock()

	for _, s := range sessions {
		s.widget.Teardown()
	}
}
