package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/usecase"
)

// Callback prefikslari: "<action>|<kind>|<id>" yoki "paid|<orderId>"
const (
	cbAdd    = "add"
	cbInc    = "inc"
	cbDec    = "dec"
	cbRemove = "rm"
	cbPaid   = "paid"
	cbClear  = "clear"
	cbCart   = "cart"
)

func itemCallback(action string, kind entity.ItemKind, id string) string {
	return action + "|" + string(kind) + "|" + id
}

func getWelcomeMessage(name string) string {
	greeting := "👋 Xin chào"
	if n := strings.TrimSpace(name); n != "" {
		greeting = fmt.Sprintf("%s, %s", greeting, n)
	}
	return greeting + "! Mình là trợ lý đặt món của nhà hàng. Bạn muốn ăn gì hôm nay?"
}

func getHelpMessage() string {
	return `🤖 Hướng dẫn

/start - bắt đầu lại
/cart - xem giỏ hàng
/clear - xoá giỏ hàng và lịch sử trò chuyện
/menu - tải thực đơn (Excel)
/refresh - cập nhật thực đơn
/help - hướng dẫn

Cứ nhắn tự nhiên, ví dụ:
• "Cho mình xem các món cá"
• "Combo cho 4 người giá bao nhiêu?"
• "Thêm 2 phần bò lúc lắc"`
}

// cardCaption: "🍽️ Cá Kho Làng Vũ Đại\n💰 89.000₫"
func cardCaption(in entity.RenderInstruction) string {
	name, price := "", ""
	if in.Mention != nil {
		name, price = in.Mention.Name, in.Mention.Price
	}
	if in.Resolved && in.Item != nil {
		name = in.Item.Name
		if in.Item.Price > 0 {
			price = usecase.FormatVND(in.Item.Price)
		}
	}
	icon := "🍽️"
	if in.Kind == entity.RenderComboCard {
		icon = "🎁"
	}
	caption := icon + " " + name
	if price != "" {
		caption += "\n💰 " + price
	}
	if !in.Resolved {
		caption += "\n(chưa có trong thực đơn)"
	}
	return caption
}

// cardKeyboard faqat katalogda topilgan kartochkalar savatga qo'shiladi
func cardKeyboard(in entity.RenderInstruction) *tgbotapi.InlineKeyboardMarkup {
	if !in.Resolved || in.Item == nil {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🛒 Thêm vào giỏ", itemCallback(cbAdd, in.Item.Kind, in.Item.ID)),
	))
	return &markup
}

func formatOrderInfo(in entity.RenderInstruction) string {
	var b strings.Builder
	b.WriteString("📦 Thông tin đơn hàng")
	for _, f := range in.Fields {
		fmt.Fprintf(&b, "\n• %s: %s", f.Label, f.Value)
	}
	if in.Order != nil && len(in.Order.Lines) > 0 {
		b.WriteString("\n")
		for _, l := range in.Order.Lines {
			fmt.Fprintf(&b, "\n- %s x%d - %s", l.Name, l.Quantity, usecase.FormatVND(l.Subtotal()))
		}
	}
	return b.String()
}

func formatCartSummary(in entity.RenderInstruction) string {
	if in.Label != "" {
		return "🧾 Tổng cộng: " + in.Label
	}
	return "🧾 " + in.Text
}

func qrKeyboard(orderID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Tôi đã thanh toán", cbPaid+"|"+orderID),
	))
}

// formatCart /cart ko'rinishi
func formatCart(cart entity.CartState) string {
	if len(cart.Lines) == 0 {
		return "🛒 Giỏ hàng đang trống."
	}
	var b strings.Builder
	b.WriteString("🛒 Giỏ hàng của bạn\n")
	for i, l := range cart.Lines {
		fmt.Fprintf(&b, "\n%d. %s\n   %s x %d = %s", i+1, l.Name, usecase.FormatVND(l.Price), l.Quantity, usecase.FormatVND(l.Subtotal()))
	}
	fmt.Fprintf(&b, "\n\nTổng cộng: %s (%d món)", usecase.FormatVND(cart.Total()), cart.ItemCount())
	return b.String()
}

func cartKeyboard(cart entity.CartState) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range cart.Lines {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", itemCallback(cbDec, l.Kind, l.ItemID)),
			tgbotapi.NewInlineKeyboardButtonData(truncateLabel(l.Name, 24), itemCallback(cbInc, l.Kind, l.ItemID)),
			tgbotapi.NewInlineKeyboardButtonData("➕", itemCallback(cbInc, l.Kind, l.ItemID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", itemCallback(cbRemove, l.Kind, l.ItemID)),
		))
	}
	if len(cart.Lines) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧹 Xoá giỏ hàng", cbClear),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func truncateLabel(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
