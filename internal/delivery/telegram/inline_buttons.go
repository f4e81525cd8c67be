package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/storefront-chat/pkg/logger"
)

// clearInlineButtons callback kelgan xabardan tugmalarni olib tashlaydi
func (h *BotHandler) clearInlineButtons(cq *tgbotapi.CallbackQuery) bool {
	if cq == nil {
		return false
	}
	if cq.Message != nil && cq.Message.Chat != nil {
		return h.clearInlineButtonsByMessage(cq.Message.Chat.ID, cq.Message.MessageID, "")
	}
	if cq.InlineMessageID != "" {
		return h.clearInlineButtonsByMessage(0, 0, cq.InlineMessageID)
	}
	return false
}

func (h *BotHandler) clearInlineButtonsByMessage(chatID int64, messageID int, inlineID string) bool {
	if h.bot == nil {
		return false
	}
	edit := tgbotapi.EditMessageReplyMarkupConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:          chatID,
			MessageID:       messageID,
			InlineMessageID: inlineID,
			ReplyMarkup:     &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
		},
	}
	if _, err := h.bot.Request(edit); err != nil {
		logger.WarnLogger.Printf("inline keyboard clear failed: %v", err)
		return false
	}
	return true
}
