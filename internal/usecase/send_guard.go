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
)

var (
	// ErrSendInFlight means the previous message has not been answered yet.
	ErrSendInFlight = errors.New("send already in flight")

	// ErrDuplicateSend means the same text was sent within the cooldown window.
	ErrDuplicateSend = errors.New("duplicate send within cooldown")
)

// SendGuard single-flight va takroriy xabar himoyasi
type SendGuard struct {
	mu       sync.Mutex
	inFlight bool
	lastText string
	lastAt   time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewSendGuard creates a guard; cooldown <= 0 uses the default.
func NewSendGuard(cooldown time.Duration) *SendGuard {
	if cooldown <= 0 {
		cooldown = constants.DefaultSendCooldown
	}
	return &SendGuard{cooldown: cooldown, now: time.Now}
}

// Begin claims the send slot for text. Every successful Begin must be paired with End.
func (g *SendGuard) Begin(text string) error {
	text = strings.TrimSpace(text)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight {
		return ErrSendInFlight
	}
	now := g.now()
	if text == g.lastText && !g.lastAt.IsZero() && now.Sub(g.lastAt) < g.cooldown {
		return ErrDuplicateSend
	}
	g.inFlight = true
	g.lastText = text
	g.lastAt = now
	return nil
}

// End releases the send slot.
func (g *SendGuard) End() {
	g.mu.Lock()
	g.inFlight = false
	g.mu.Unlock()
}

// InFlight reports whether a send is running.
func (g *SendGuard) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// ResolveIdentity returns the device's persisted pseudo user id, creating one on
// first use, and a fresh session id.
func ResolveIdentity(ctx context.Context, device repository.DeviceStore, deviceID string) (entity.SessionIdentity, error) {
	id := entity.SessionIdentity{SessionID: uuid.NewString()}
	if device == nil {
		id.UserID = "guest_" + uuid.NewString()
		return id, nil
	}

	userID, err := device.UserID(ctx, deviceID)
	if err != nil {
		return entity.SessionIdentity{}, fmt.Errorf("load user id: %w", err)
	}
	if userID == "" {
		userID = "guest_" + uuid.NewString()
		if err := device.SaveUserID(ctx, deviceID, userID); err != nil {
			return entity.SessionIdentity{}, fmt.Errorf("save user id: %w", err)
		}
	}
	id.UserID = userID
	return id, nil
}
