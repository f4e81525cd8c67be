package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
	"github.com/yourusername/storefront-chat/internal/usecase"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

// callbackData parsed inline button payload
type callbackData struct {
	action  string
	kind    entity.ItemKind
	itemID  string
	orderID string
}

func parseCallbackData(data string) (callbackData, bool) {
	parts := strings.Split(data, "|")
	switch parts[0] {
	case cbClear, cbCart:
		return callbackData{action: parts[0]}, len(parts) == 1
	case cbPaid:
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return callbackData{}, false
		}
		return callbackData{action: cbPaid, orderID: parts[1]}, true
	case cbAdd, cbInc, cbDec, cbRemove:
		if len(parts) != 3 || parts[2] == "" {
			return callbackData{}, false
		}
		kind := entity.ItemKind(parts[1])
		if kind != entity.KindProduct && kind != entity.KindCombo {
			return callbackData{}, false
		}
		return callbackData{action: parts[0], kind: kind, itemID: parts[2]}, true
	}
	return callbackData{}, false
}

// Callback query larini qayta ishlash
func (h *BotHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	if !cq.Message.Chat.IsPrivate() {
		return
	}

	data, ok := parseCallbackData(cq.Data)
	if !ok {
		h.answerCallback(cq, "")
		logger.WarnLogger.Printf("Noma'lum callback chat=%d: %q", chatID, cq.Data)
		return
	}

	w, err := h.widgetFor(ctx, chatID)
	if err != nil {
		h.answerCallback(cq, textFailed)
		logger.ErrorLogger.Printf("Widget ochilmadi chat=%d: %v", chatID, err)
		return
	}

	switch data.action {
	case cbPaid:
		h.handlePaidCallback(ctx, cq, w, data.orderID)
		return
	case cbCart:
		h.answerCallback(cq, "")
		h.showCart(chatID, w.Cart().Snapshot())
		return
	case cbAdd:
		item, found := h.lookupItem(ctx, w, data.kind, data.itemID)
		if !found {
			h.answerCallback(cq, "Món này hiện không còn trong thực đơn.")
			return
		}
		cart := w.Cart().Add(ctx, item, 1)
		h.answerCallback(cq, fmt.Sprintf("🛒 Đã thêm %s", item.Name))
		h.sendWithKeyboard(chatID, fmt.Sprintf("✅ Đã thêm %s vào giỏ hàng (%d món).", item.Name, cart.ItemCount()),
			tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🛒 Xem giỏ hàng", cbCart),
			)))
		return
	}

	cart := w.Cart()
	var next entity.CartState
	switch data.action {
	case cbInc, cbDec:
		qty := lineQuantity(cart.Snapshot(), data.kind, data.itemID)
		if qty == 0 {
			h.answerCallback(cq, "")
			h.refreshCartView(cq, cart.Snapshot())
			return
		}
		if data.action == cbInc {
			qty++
		} else {
			qty--
		}
		next = cart.SetQuantity(ctx, data.kind, data.itemID, qty)
	case cbRemove:
		next = cart.Remove(ctx, data.kind, data.itemID)
	case cbClear:
		next = cart.Clear(ctx)
	}
	h.answerCallback(cq, "")
	h.refreshCartView(cq, next)
}

func lineQuantity(cart entity.CartState, kind entity.ItemKind, itemID string) int {
	for _, l := range cart.Lines {
		if l.SameItem(kind, itemID) {
			return l.Quantity
		}
	}
	return 0
}

// lookupItem avval umumiy indexdan, keyin katalog manbasidan qidiradi
func (h *BotHandler) lookupItem(ctx context.Context, w *usecase.ChatWidget, kind entity.ItemKind, id string) (entity.CatalogItem, bool) {
	if item, ok := w.Index().ByID(kind, id); ok {
		return item, true
	}
	source := h.opts.Catalog
	if source == nil {
		source = h.opts.Widget.Catalog
	}
	if source == nil {
		return entity.CatalogItem{}, false
	}
	item, err := source.FetchByID(ctx, kind, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.WarnLogger.Printf("Katalogdan olishda xatolik %s/%s: %v", kind, id, err)
		}
		return entity.CatalogItem{}, false
	}
	if item == nil {
		return entity.CatalogItem{}, false
	}
	w.Index().Add(*item)
	return *item, true
}

// handlePaidCallback "Tôi đã thanh toán" tugmasi
func (h *BotHandler) handlePaidCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, w *usecase.ChatWidget, orderID string) {
	chatID := cq.Message.Chat.ID
	res, err := w.ConfirmPayment(ctx, orderID)
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		h.answerCallback(cq, "")
		h.clearInlineButtons(cq)
		h.sendMessage(chatID, fmt.Sprintf("⚠️ Không tìm thấy đơn %s.", orderID))
		return
	case err != nil:
		logger.ErrorLogger.Printf("To'lov tasdiqlashda xatolik order=%s: %v", orderID, err)
		h.answerCallback(cq, "Chưa xác nhận được, vui lòng thử lại.")
		return
	}

	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Chưa nhận được thanh toán."
		}
		h.answerCallback(cq, msg)
		return
	}
	h.answerCallback(cq, "✅")
	h.clearInlineButtons(cq)
}

func (h *BotHandler) answerCallback(cq *tgbotapi.CallbackQuery, text string) {
	if h.bot == nil || cq == nil {
		return
	}
	if _, err := h.bot.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		logger.WarnLogger.Printf("Callback javobida xatolik: %v", err)
	}
}

// showCart savatchani tugmalar bilan yuborish
func (h *BotHandler) showCart(chatID int64, cart entity.CartState) {
	if len(cart.Lines) == 0 {
		h.sendMessage(chatID, formatCart(cart))
		return
	}
	h.sendWithKeyboard(chatID, formatCart(cart), cartKeyboard(cart))
}

// refreshCartView savatcha xabarini joyida yangilaydi, bo'lmasa yangisini yuboradi
func (h *BotHandler) refreshCartView(cq *tgbotapi.CallbackQuery, cart entity.CartState) {
	chatID := cq.Message.Chat.ID
	text := formatCart(cart)
	markup := cartKeyboard(cart)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cq.Message.MessageID, text, markup)
	if _, err := h.bot.Request(edit); err != nil {
		logger.WarnLogger.Printf("Savatcha xabari yangilanmadi: %v", err)
		h.showCart(chatID, cart)
	}
}
