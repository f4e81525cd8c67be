package telegram

import (
	"context"
	"time"

	"github.com/yourusername/storefront-chat/pkg/logger"
)

const (
	sessionCleanupInterval = 15 * time.Minute
	sessionIdleTimeout     = 2 * time.Hour
)

// cleanupSessions - eski widgetlarni tozalash (memory leak oldini olish)
func (h *BotHandler) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := h.evictIdleWidgets(now, sessionIdleTimeout); n > 0 {
				logger.InfoLogger.Printf("♻️ %d ta faolsiz widget tozalandi", n)
			}
		}
	}
}

// evictIdleWidgets tears down widgets idle longer than timeout. A widget that
// still polls a payment is kept.
func (h *BotHandler) evictIdleWidgets(now time.Time, timeout time.Duration) int {
	h.widgetMu.Lock()
	var stale []*chatSession
	for chatID, s := range h.widgets {
		if now.Sub(s.lastUsed) <= timeout || s.widget.HasActivePolling() {
			continue
		}
		stale = append(stale, s)
		delete(h.widgets, chatID)
	}
	h.widgetMu.Unlock()

	for _, s := range stale {
		s.widget.Teardown()
	}
	return len(stale)
}
