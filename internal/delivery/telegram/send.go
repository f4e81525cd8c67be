package telegram

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/storefront-chat/pkg/logger"
)

const telegramTextLimit = 4096

const emptyReplyText = "Xin lỗi, mình chưa có câu trả lời. Bạn thử hỏi lại nhé.\n\n/help - hướng dẫn"

// sendText sends a message with optional parseMode/replyMarkup.
func (h *BotHandler) sendText(chatID int64, text string, parseMode string, replyMarkup interface{}) (*tgbotapi.Message, error) {
	if h.bot == nil {
		return nil, fmt.Errorf("telegram bot is nil")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	sent, err := h.bot.Send(msg)
	if err != nil {
		return nil, err
	}
	return &sent, nil
}

// sendToThread forum topic ichiga xabar yuborish
func (h *BotHandler) sendToThread(chatID int64, threadID int, text string) {
	if threadID <= 0 {
		h.sendMessage(chatID, text)
		return
	}
	params := make(tgbotapi.Params)
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero("message_thread_id", threadID)
	params.AddNonEmpty("text", text)

	api, ok := h.bot.(*tgbotapi.BotAPI)
	if !ok {
		h.sendMessage(chatID, text)
		return
	}
	resp, err := api.MakeRequest("sendMessage", params)
	if err != nil {
		logger.ErrorLogger.Printf("Topic xabar yuborishda xatolik: %v", err)
		return
	}
	var msg tgbotapi.Message
	if err := json.Unmarshal(resp.Result, &msg); err != nil {
		logger.WarnLogger.Printf("Topic javobi o'qilmadi: %v", err)
	}
}

// sendMessage oddiy xabar yuborish
func (h *BotHandler) sendMessage(chatID int64, text string) {
	if h.bot == nil {
		logger.WarnLogger.Printf("sendMessage skipped (bot is nil) chat=%d", chatID)
		return
	}
	if strings.TrimSpace(text) == "" {
		logger.WarnLogger.Printf("⚠️ Bo'sh xabar yuborilmoqchi bo'ldi! ChatID: %d", chatID)
		text = emptyReplyText
	}
	for _, chunk := range splitIntoChunks(text, telegramTextLimit) {
		if _, err := h.sendText(chatID, chunk, "", nil); err != nil {
			logger.ErrorLogger.Printf("Xabar yuborishda xatolik: %v", err)
			return
		}
	}
}

// sendWithKeyboard bitta xabar + inline tugmalar
func (h *BotHandler) sendWithKeyboard(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if _, err := h.sendText(chatID, text, "", markup); err != nil {
		logger.ErrorLogger.Printf("Xabar yuborishda xatolik: %v", err)
	}
}

// sendPhoto URL rasm; yuborilmasa caption matn sifatida ketadi
func (h *BotHandler) sendPhoto(chatID int64, url, caption string, markup *tgbotapi.InlineKeyboardMarkup) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	if markup != nil {
		photo.ReplyMarkup = *markup
	}
	_, err := h.bot.Send(photo)
	if err == nil {
		return
	}
	logger.WarnLogger.Printf("⚠️ Rasm yuborilmadi (%s): %v", url, err)
	if markup != nil {
		h.sendWithKeyboard(chatID, caption, *markup)
		return
	}
	h.sendMessage(chatID, caption)
}

// splitIntoChunks matnni Telegram limitiga mos bo'lib yuborish uchun bo'ladi.
// Imkon bo'lsa qator chegarasida bo'linadi.
func splitIntoChunks(s string, limit int) []string {
	if limit <= 0 || len(s) <= limit {
		return []string{s}
	}
	var chunks []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(s, "\n") {
		if current.Len()+len(line) > limit && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		for len(line) > limit {
			cut := limit
			for cut > 0 && !isRuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
