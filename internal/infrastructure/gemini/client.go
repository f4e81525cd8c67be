package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

// generator is the part of *genai.GenerativeModel the transport needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type turn struct {
	user      string
	assistant string
}

// Transport answers chat requests with Gemini when no backend assistant is
// configured. It keeps a short per-session history in memory.
type Transport struct {
	client *genai.Client
	model  generator
	menu   func() []entity.CatalogItem

	retries    int
	retryDelay time.Duration

	mu         sync.Mutex
	history    map[string][]turn
	maxHistory int
}

// NewTransport yangi Gemini transport yaratish. menu is read on every request
// so catalog refreshes are picked up.
func NewTransport(ctx context.Context, apiKey string, menu func() []entity.CatalogItem) (*Transport, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(constants.GeminiModelName)
	model.SetTemperature(constants.AITemperature)
	model.SetTopK(constants.AITopK)
	model.SetTopP(constants.AITopP)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(RestaurantInstruction)},
	}

	t := newTransport(model, menu)
	t.client = client
	return t, nil
}

func newTransport(model generator, menu func() []entity.CatalogItem) *Transport {
	return &Transport{
		model:      model,
		menu:       menu,
		retries:    constants.MaxRetries,
		retryDelay: constants.RetryDelay * time.Second,
		history:    make(map[string][]turn),
		maxHistory: constants.DefaultMaxHistoryMessages,
	}
}

// Send implements repository.ChatTransport. The reply never carries a cart or
// an order; only the backend assistant can mutate those.
func (t *Transport) Send(ctx context.Context, req entity.ChatRequest) (entity.ChatReply, error) {
	key := req.SessionID
	if key == "" {
		key = req.UserID
	}

	parts := t.buildParts(key, req)
	text, err := t.generate(ctx, parts)
	if err != nil {
		return entity.ChatReply{}, err
	}
	t.remember(key, turn{user: req.Message, assistant: text})
	return entity.ChatReply{Text: text}, nil
}

func (t *Transport) buildParts(key string, req entity.ChatRequest) []genai.Part {
	var parts []genai.Part
	if menu := formatMenu(t.menuItems()); menu != "" {
		parts = append(parts, genai.Text(menu))
	}
	parts = append(parts, genai.Text(formatCart(req.Cart)))

	t.mu.Lock()
	for _, h := range t.history[key] {
		parts = append(parts, genai.Text("Khách: "+h.user))
		parts = append(parts, genai.Text("Bạn: "+h.assistant))
	}
	t.mu.Unlock()

	return append(parts, genai.Text(req.Message))
}

func (t *Transport) menuItems() []entity.CatalogItem {
	if t.menu == nil {
		return nil
	}
	return t.menu()
}

func (t *Transport) remember(key string, tr turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := append(t.history[key], tr)
	if t.maxHistory > 0 && len(h) > t.maxHistory {
		h = h[len(h)-t.maxHistory:]
	}
	t.history[key] = h
}

// Forget drops the remembered turns of one session.
func (t *Transport) Forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.history, sessionID)
}

func (t *Transport) generate(ctx context.Context, parts []genai.Part) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= t.retries; attempt++ {
		logger.InfoLogger.Printf("🔄 Gemini API ga so'rov yuborish (urinish %d/%d)...", attempt, t.retries)

		resp, err := t.model.GenerateContent(ctx, parts...)
		switch {
		case err != nil:
			lastErr = err
			logger.WarnLogger.Printf("❌ Urinish %d xato: %v", attempt, err)
		case resp == nil || len(resp.Candidates) == 0:
			lastErr = fmt.Errorf("no response candidates")
			logger.WarnLogger.Printf("⚠️ Urinish %d: Javob kandidatlari yo'q", attempt)
		default:
			if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
				logger.WarnLogger.Println("🚫 Response blocked by safety filter!")
				return SafetyBlockedReply, nil
			}
			text := strings.TrimSpace(extractText(resp))
			if text != "" {
				logger.InfoLogger.Printf("✅ Javob muvaffaqiyatli olindi (urinish %d)", attempt)
				return text, nil
			}
			lastErr = fmt.Errorf("empty response")
			logger.WarnLogger.Printf("⚠️ Urinish %d: Bo'sh javob qaytdi", attempt)
		}

		if attempt < t.retries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(t.retryDelay):
			}
		}
	}
	return "", fmt.Errorf("gemini: no answer after %d attempts: %w", t.retries, lastErr)
}

// extractText javobdan textni ajratib olish
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					result.WriteString(string(txt))
				}
			}
		}
	}
	return result.String()
}

func formatMenu(items []entity.CatalogItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(menuHeader)
	for _, item := range items {
		fmt.Fprintf(&b, "\n- %s - %s", item.Name, formatVND(item.Price))
	}
	return b.String()
}

func formatCart(lines []entity.CartLine) string {
	if len(lines) == 0 {
		return emptyCartNote
	}
	var b strings.Builder
	b.WriteString(cartHeader)
	var total int64
	for _, l := range lines {
		fmt.Fprintf(&b, "\n- %s x%d - %s", l.Name, l.Quantity, formatVND(l.Subtotal()))
		total += l.Subtotal()
	}
	fmt.Fprintf(&b, "\nTổng cộng: %s", formatVND(total))
	return b.String()
}

// formatVND 449000 -> "449.000₫"
func formatVND(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "₫"
	if neg {
		out = "-" + out
	}
	return out
}

// Close client ni yopish
func (t *Transport) Close() error {
	if t.client == nil {
		return nil
	}
	return t.client.Close()
}
