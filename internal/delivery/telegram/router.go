package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/storefront-chat/pkg/logger"
)

// Start botni ishga tushirish
func (h *BotHandler) Start(ctx context.Context) error {
	if h.api == nil {
		return fmt.Errorf("telegram bot is not connected")
	}
	h.workerPool.start(ctx)
	go h.cleanupSessions(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.api.StopReceivingUpdates()
			h.workerPool.shutdown()
			h.shutdownWidgets()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.dispatch(ctx, update)
		}
	}
}

func (h *BotHandler) dispatch(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		go h.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		go h.handleMessage(ctx, update.Message)
	}
}

// handleMessage xabarni qayta ishlash
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil || !message.Chat.IsPrivate() {
		return
	}
	chatID := message.Chat.ID

	if message.IsCommand() || strings.HasPrefix(strings.TrimSpace(message.Text), "/") {
		h.handleCommand(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}
	logger.InfoLogger.Printf("📩 chat=%d: %s", chatID, truncateForLog(text, 120))
	h.workerPool.submit(&messageRequest{ctx: ctx, chatID: chatID, text: text})
}

func truncateForLog(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
