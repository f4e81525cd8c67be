package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/storefront-chat/pkg/logger"
)

const waitingText = "⏳ Đang soạn câu trả lời..."

// showWaiting "typing" holati va vaqtinchalik kutish xabari
func (h *BotHandler) showWaiting(chatID int64) {
	if h.bot == nil {
		return
	}
	if _, err := h.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		logger.WarnLogger.Printf("typing action failed: %v", err)
	}
	sent, err := h.sendText(chatID, waitingText, "", nil)
	if err != nil || sent == nil {
		return
	}
	h.setWaitingMessage(chatID, sent.MessageID)
}

// Waiting message helpers
func (h *BotHandler) setWaitingMessage(chatID int64, msgID int) {
	h.waitingMu.Lock()
	defer h.waitingMu.Unlock()
	if prev, ok := h.waitingMsgs[chatID]; ok && prev.MessageID != msgID {
		go h.deleteMessage(prev)
	}
	h.waitingMsgs[chatID] = waitingMessage{ChatID: chatID, MessageID: msgID}
}

func (h *BotHandler) clearWaitingMessage(chatID int64) {
	h.waitingMu.Lock()
	msg, ok := h.waitingMsgs[chatID]
	if ok {
		delete(h.waitingMsgs, chatID)
	}
	h.waitingMu.Unlock()

	if ok {
		h.deleteMessage(msg)
	}
}

func (h *BotHandler) getWaitingMessage(chatID int64) (waitingMessage, bool) {
	h.waitingMu.RLock()
	defer h.waitingMu.RUnlock()
	msg, ok := h.waitingMsgs[chatID]
	return msg, ok
}

func (h *BotHandler) deleteMessage(msg waitingMessage) {
	if h.bot == nil {
		return
	}
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(msg.ChatID, msg.MessageID)); err != nil {
		logger.WarnLogger.Printf("Waiting message delete failed: %v", err)
	}
}
