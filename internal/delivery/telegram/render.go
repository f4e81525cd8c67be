package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/usecase"
)

// renderInstructions javob oqimini Telegram xabarlariga aylantiradi.
// Ketma-ket matn va jami qatorlari bitta xabarga yig'iladi.
func (h *BotHandler) renderInstructions(chatID int64, instructions []entity.RenderInstruction) {
	var text strings.Builder
	appendText := func(s string) {
		if strings.TrimSpace(s) == "" {
			return
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(s)
	}
	flush := func() {
		if text.Len() == 0 {
			return
		}
		h.sendMessage(chatID, text.String())
		text.Reset()
	}

	for _, in := range instructions {
		switch in.Kind {
		case entity.RenderPlainText:
			appendText(in.Text)
		case entity.RenderCartSummary:
			appendText(formatCartSummary(in))
		case entity.RenderProductCard, entity.RenderComboCard:
			flush()
			h.sendCard(chatID, in)
		case entity.RenderActionLink:
			flush()
			h.sendLink(chatID, in)
		case entity.RenderOrderInfo:
			flush()
			h.sendMessage(chatID, formatOrderInfo(in))
		case entity.RenderQRPayment:
			flush()
			h.sendQR(chatID, in)
		default:
			appendText(in.Text)
		}
	}
	flush()
}

func (h *BotHandler) sendCard(chatID int64, in entity.RenderInstruction) {
	caption := cardCaption(in)
	markup := cardKeyboard(in)
	if in.Item != nil && isHTTPURL(in.Item.ImageRef) {
		h.sendPhoto(chatID, in.Item.ImageRef, caption, markup)
		return
	}
	if markup != nil {
		h.sendWithKeyboard(chatID, caption, *markup)
		return
	}
	h.sendMessage(chatID, caption)
}

func (h *BotHandler) sendLink(chatID int64, in entity.RenderInstruction) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		label = in.URL
	}
	if !isHTTPURL(in.URL) {
		h.sendMessage(chatID, label+": "+in.URL)
		return
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonURL("🔗 "+label, in.URL),
	))
	h.sendWithKeyboard(chatID, "👉 "+label, markup)
}

func (h *BotHandler) sendQR(chatID int64, in entity.RenderInstruction) {
	orderID := ""
	if in.Order != nil {
		orderID = in.Order.OrderID
	}
	caption := "📱 Quét mã QR để thanh toán."
	if in.Order != nil && in.Order.Total > 0 {
		caption += "\n💰 Số tiền: " + usecase.FormatVND(in.Order.Total)
	}
	markup := qrKeyboard(orderID)
	h.sendPhoto(chatID, in.URL, caption, &markup)
}

// isHTTPURL Telegram faqat http(s) URL larni qabul qiladi
func isHTTPURL(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
