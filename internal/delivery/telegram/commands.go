package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

// handleCommand komandalarni qayta ishlash
func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	if message == nil || message.Chat == nil {
		return
	}
	chatID := message.Chat.ID
	cmd := extractCommand(message)
	if cmd == "" {
		h.sendMessage(chatID, "Lệnh không hợp lệ. /help để xem hướng dẫn.")
		return
	}

	switch cmd {
	case "start":
		name := ""
		if message.From != nil {
			name = message.From.FirstName
		}
		if _, err := h.widgetFor(ctx, chatID); err != nil {
			logger.ErrorLogger.Printf("Widget ochilmadi chat=%d: %v", chatID, err)
		}
		h.sendMessage(chatID, getWelcomeMessage(name))
	case "help":
		h.sendMessage(chatID, getHelpMessage())
	case "cart":
		h.handleCartCommand(ctx, chatID)
	case "clear":
		h.handleClearCommand(ctx, chatID)
	case "refresh":
		h.handleRefreshCommand(ctx, chatID)
	case "menu":
		h.handleMenuExportCommand(ctx, chatID)
	default:
		h.sendMessage(chatID, "Lệnh không hợp lệ. /help để xem hướng dẫn.")
	}
}

func extractCommand(msg *tgbotapi.Message) string {
	if msg == nil {
		return ""
	}
	if msg.IsCommand() {
		return msg.Command()
	}
	txt := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(txt, "/") {
		return ""
	}
	first := strings.TrimPrefix(strings.Fields(txt)[0], "/")
	if first == "" {
		return ""
	}
	return strings.SplitN(first, "@", 2)[0]
}

// handleCartCommand savatchani tugmalar bilan ko'rsatish
func (h *BotHandler) handleCartCommand(ctx context.Context, chatID int64) {
	w, err := h.widgetFor(ctx, chatID)
	if err != nil {
		h.sendMessage(chatID, textFailed)
		return
	}
	h.showCart(chatID, w.Cart().Snapshot().Clone())
}

// handleClearCommand savatcha va tarixni tozalash
func (h *BotHandler) handleClearCommand(ctx context.Context, chatID int64) {
	w, err := h.widgetFor(ctx, chatID)
	if err != nil {
		h.sendMessage(chatID, textFailed)
		return
	}
	w.Cart().Clear(ctx)
	if err := w.ResetConversation(ctx); err != nil {
		logger.WarnLogger.Printf("Tarix tozalanmadi chat=%d: %v", chatID, err)
		h.sendMessage(chatID, "Không xoá được lịch sử trò chuyện.")
		return
	}
	h.sendMessage(chatID, "🧹 Đã xoá giỏ hàng và lịch sử trò chuyện.")
}

// handleRefreshCommand katalog indexini qayta qurish
func (h *BotHandler) handleRefreshCommand(ctx context.Context, chatID int64) {
	if h.opts.Widget.Catalog == nil {
		h.sendMessage(chatID, "Thực đơn không có nguồn để cập nhật.")
		return
	}
	w, err := h.widgetFor(ctx, chatID)
	if err != nil {
		h.sendMessage(chatID, textFailed)
		return
	}
	n := w.RefreshCatalog(ctx)
	h.sendMessage(chatID, fmt.Sprintf("🔄 Đã cập nhật thực đơn: %d khoá tìm kiếm.", n))
}

// handleMenuExportCommand katalogni Excel fayl sifatida yuborish
func (h *BotHandler) handleMenuExportCommand(ctx context.Context, chatID int64) {
	items := h.opts.Widget.Index.Items()
	if len(items) == 0 && h.opts.Widget.Catalog != nil {
		if _, err := h.widgetFor(ctx, chatID); err == nil {
			items = h.opts.Widget.Index.Items()
		}
	}
	if len(items) == 0 {
		h.sendMessage(chatID, "Thực đơn đang trống.")
		return
	}

	raw, err := buildMenuXLSX(items)
	if err != nil {
		logger.ErrorLogger.Printf("menu export xlsx error: %v", err)
		h.sendMessage(chatID, textFailed)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: constants.MenuExportFileName, Bytes: raw})
	doc.Caption = fmt.Sprintf("📋 Thực đơn: %d món", len(items))
	if _, err := h.bot.Send(doc); err != nil {
		logger.ErrorLogger.Printf("menu export send error: %v", err)
	}
}
