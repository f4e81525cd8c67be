package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
	"github.com/yourusername/storefront-chat/internal/metrics"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

// ErrNotMounted is returned by widget operations called before Mount.
var ErrNotMounted = errors.New("chat widget not mounted")

// WidgetDeps are the shared collaborators of a ChatWidget. Index and Extractor may
// be shared between widgets.
type WidgetDeps struct {
	Transport  repository.ChatTransport
	Catalog    repository.CatalogSource
	Payments   repository.PaymentGateway
	ServerCart repository.CartStore
	Device     repository.DeviceStore
	History    repository.ChatRepository
	Index      *CatalogIndex
	Extractor  *Extractor
	Metrics    *metrics.Collector
}

// WidgetOptions are per-widget settings.
type WidgetOptions struct {
	DeviceID     string
	AuthToken    string
	SendCooldown time.Duration
	PollInterval time.Duration
	HistoryLimit int
	// CatalogPageSize is the page size used when the shared index is filled.
	CatalogPageSize int

	OnPaymentConfirmed func(orderID string)
	OnPaymentNotFound  func(orderID string)
}

// WidgetReply is the outcome of one Send.
type WidgetReply struct {
	Instructions   []entity.RenderInstruction
	Message        entity.ChatMessage
	Fallback       bool
	OrderCompleted bool
	Poll           *PollSession
}

// ChatWidget is one conversational storefront session: identity, cart, history and
// payment polling for a single device.
type ChatWidget struct {
	deps WidgetDeps
	opts WidgetOptions

	interpreter *ReplyInterpreter
	guard       *SendGuard
	poller      *PaymentPoller

	mu       sync.RWMutex
	mounted  bool
	identity entity.SessionIdentity
	cart     *CartReconciler
	history  []entity.ChatMessage

	ctx    context.Context
	cancel context.CancelFunc
}

// NewChatWidget creates an unmounted widget.
func NewChatWidget(deps WidgetDeps, opts WidgetOptions) *ChatWidget {
	if deps.Index == nil {
		deps.Index = NewCatalogIndex()
	}
	if deps.Extractor == nil {
		deps.Extractor = NewExtractor(constants.DefaultExtractMemoSize, deps.Metrics)
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = constants.DefaultMaxContextSize
	}
	if opts.CatalogPageSize <= 0 {
		opts.CatalogPageSize = constants.DefaultCatalogPageSize
	}
	return &ChatWidget{
		deps:        deps,
		opts:        opts,
		interpreter: NewReplyInterpreter(deps.Extractor, deps.Index),
		guard:       NewSendGuard(opts.SendCooldown),
		poller:      NewPaymentPoller(deps.Payments, opts.PollInterval, deps.Metrics),
	}
}

// Mount resolves identity, fills an empty catalog index, restores the client cart
// and loads history.
func (w *ChatWidget) Mount(ctx context.Context) error {
	identity, err := ResolveIdentity(ctx, w.deps.Device, w.opts.DeviceID)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}

	if w.deps.Index.Len("") == 0 && w.deps.Catalog != nil {
		w.deps.Index.Fill(ctx, w.deps.Catalog, w.opts.CatalogPageSize)
		w.recordCatalogSize()
	}

	cart := NewCartReconciler(CartDeps{
		Device:  w.deps.Device,
		Server:  w.deps.ServerCart,
		Catalog: w.deps.Catalog,
		Index:   w.deps.Index,
		Metrics: w.deps.Metrics,
	}, w.opts.DeviceID, identity.UserID)
	if err := cart.Load(ctx); err != nil {
		logger.WarnLogger.Printf("⚠️ Savatcha tiklanmadi (device=%s): %v", w.opts.DeviceID, err)
	}

	var history []entity.ChatMessage
	if w.deps.History != nil {
		history, err = w.deps.History.GetHistory(ctx, identity.UserID, w.opts.HistoryLimit)
		if err != nil {
			logger.WarnLogger.Printf("⚠️ Chat tarixi yuklanmadi (user=%s): %v", identity.UserID, err)
			history = nil
		}
	}

	wctx, cancel := context.WithCancel(context.Background())

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.identity = identity
	w.cart = cart
	w.history = history
	w.ctx, w.cancel = wctx, cancel
	w.mounted = true
	w.mu.Unlock()

	logger.InfoLogger.Printf("🔌 Widget ulandi: user=%s session=%s", identity.UserID, identity.SessionID)
	return nil
}

// RefreshCatalog rebuilds the catalog into a fresh index and swaps it into the
// shared one. An empty rebuild keeps the current index.
func (w *ChatWidget) RefreshCatalog(ctx context.Context) int {
	fresh := BuildCatalogIndex(ctx, w.deps.Catalog, w.opts.CatalogPageSize)
	if fresh.Len("") == 0 {
		logger.WarnLogger.Printf("⚠️ Katalog yangilanmadi, eski indeks qoldi (%d ta)", w.deps.Index.Len(""))
		return w.deps.Index.Len("")
	}
	w.deps.Index.replaceWith(fresh)
	w.recordCatalogSize()
	return w.deps.Index.Len("")
}

func (w *ChatWidget) recordCatalogSize() {
	w.deps.Metrics.CatalogSize(string(entity.KindProduct), w.deps.Index.Len(entity.KindProduct))
	w.deps.Metrics.CatalogSize(string(entity.KindCombo), w.deps.Index.Len(entity.KindCombo))
}

// Identity returns the session identity resolved at mount.
func (w *ChatWidget) Identity() entity.SessionIdentity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.identity
}

// Cart returns the widget's cart reconciler, or nil before Mount.
func (w *ChatWidget) Cart() *CartReconciler {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cart
}

// Index returns the catalog index used for resolution.
func (w *ChatWidget) Index() *CatalogIndex {
	return w.deps.Index
}

// History returns a copy of the message history.
func (w *ChatWidget) History() []entity.ChatMessage {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]entity.ChatMessage, len(w.history))
	copy(out, w.history)
	return out
}

// Send delivers one user message and interprets the assistant's reply.
func (w *ChatWidget) Send(ctx context.Context, text string) (WidgetReply, error) {
	w.mu.RLock()
	mounted, identity, cart := w.mounted, w.identity, w.cart
	w.mu.RUnlock()
	if !mounted {
		return WidgetReply{}, ErrNotMounted
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return WidgetReply{}, errors.New("empty message")
	}

	if err := w.guard.Begin(text); err != nil {
		switch {
		case errors.Is(err, ErrSendInFlight):
			w.deps.Metrics.SendRejected("in_flight")
		case errors.Is(err, ErrDuplicateSend):
			w.deps.Metrics.SendRejected("duplicate")
		}
		return WidgetReply{}, err
	}
	defer w.guard.End()

	w.appendHistory(ctx, entity.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		Text:      text,
		IsUser:    true,
		CreatedAt: time.Now(),
	})

	reply, err := w.deps.Transport.Send(ctx, entity.ChatRequest{
		Message:   text,
		UserID:    identity.UserID,
		SessionID: identity.SessionID,
		Cart:      cart.Snapshot().Lines,
		AuthToken: w.opts.AuthToken,
	})
	if err != nil {
		logger.ErrorLogger.Printf("❌ Chat transport xatosi (user=%s): %v", identity.UserID, err)
		w.deps.Metrics.TransportError()
		msg := entity.ChatMessage{
			ID:        uuid.NewString(),
			UserID:    identity.UserID,
			Text:      constants.FallbackAssistantReply,
			CreatedAt: time.Now(),
		}
		w.appendHistory(ctx, msg)
		return WidgetReply{
			Instructions: []entity.RenderInstruction{{Kind: entity.RenderPlainText, Text: msg.Text}},
			Message:      msg,
			Fallback:     true,
		}, nil
	}

	instructions, mentions := w.interpreter.Interpret(reply)
	out := WidgetReply{Instructions: instructions}

	if reply.Cart != nil {
		cart.ReplaceFromAgent(ctx, *reply.Cart)
	}
	if DetectOrderSuccess(reply) {
		cart.ClearAfterOrder(ctx)
		out.OrderCompleted = true
	}
	if reply.Order.AwaitingQRPayment() {
		out.Poll = w.startPolling(reply.Order.OrderID)
	}

	out.Message = entity.ChatMessage{
		ID:               uuid.NewString(),
		UserID:           identity.UserID,
		Text:             reply.Text,
		ExtractedContext: mentions,
		Order:            reply.Order,
		CreatedAt:        time.Now(),
	}
	w.appendHistory(ctx, out.Message)
	return out, nil
}

func (w *ChatWidget) startPolling(orderID string) *PollSession {
	w.mu.RLock()
	wctx, cart := w.ctx, w.cart
	w.mu.RUnlock()

	return w.poller.Start(wctx, orderID, PollCallbacks{
		OnConfirmed: func(id string) {
			cart.ClearAfterOrder(wctx)
			if w.opts.OnPaymentConfirmed != nil {
				w.opts.OnPaymentConfirmed(id)
			}
		},
		OnNotFound: func(id string) {
			if w.opts.OnPaymentNotFound != nil {
				w.opts.OnPaymentNotFound(id)
			}
		},
	})
}

// ConfirmPayment handles the customer's "I have paid" action for an order.
func (w *ChatWidget) ConfirmPayment(ctx context.Context, orderID string) (entity.PaymentConfirmation, error) {
	w.mu.RLock()
	mounted, cart := w.mounted, w.cart
	w.mu.RUnlock()
	if !mounted {
		return entity.PaymentConfirmation{}, ErrNotMounted
	}

	if s, ok := w.poller.Session(orderID); ok && !s.Status().Terminal() {
		return s.ConfirmManually(ctx)
	}
	if w.deps.Payments == nil {
		return entity.PaymentConfirmation{}, errors.New("payment gateway not configured")
	}
	res, err := w.deps.Payments.Confirm(ctx, orderID)
	if err != nil {
		return res, err
	}
	if res.Success {
		cart.ClearAfterOrder(ctx)
		if w.opts.OnPaymentConfirmed != nil {
			w.opts.OnPaymentConfirmed(orderID)
		}
	}
	return res, nil
}

// PollSession returns the poll session for an order, if one was started.
func (w *ChatWidget) PollSession(orderID string) (*PollSession, bool) {
	return w.poller.Session(orderID)
}

// HasActivePolling reports whether any payment is still being polled.
func (w *ChatWidget) HasActivePolling() bool {
	return w.poller.Active() > 0
}

// Teardown stops every poll session without callbacks and waits for cart syncs.
func (w *ChatWidget) Teardown() {
	w.poller.StopAll()

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	cart := w.cart
	w.mounted = false
	w.mu.Unlock()

	if cart != nil {
		cart.Wait()
	}
}

// ResetConversation drops the message history of the current user. The cart and
// running poll sessions are kept.
func (w *ChatWidget) ResetConversation(ctx context.Context) error {
	w.mu.Lock()
	mounted, userID := w.mounted, w.identity.UserID
	w.history = nil
	w.mu.Unlock()
	if !mounted {
		return ErrNotMounted
	}
	if w.deps.History == nil {
		return nil
	}
	return w.deps.History.ClearHistory(ctx, userID)
}

func (w *ChatWidget) appendHistory(ctx context.Context, msg entity.ChatMessage) {
	w.mu.Lock()
	w.history = append(w.history, msg)
	if len(w.history) > w.opts.HistoryLimit {
		w.history = w.history[len(w.history)-w.opts.HistoryLimit:]
	}
	w.mu.Unlock()

	if w.deps.History == nil {
		return
	}
	if err := w.deps.History.SaveMessage(ctx, msg); err != nil {
		logger.WarnLogger.Printf("⚠️ Xabar tarixga yozilmadi: %v", err)
	}
}
