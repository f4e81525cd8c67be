package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSendGuard_DuplicateWithinCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := NewSendGuard(3 * time.Second)
	g.now = clock.Now

	if err := g.Begin("Cho mình xem thực đơn"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	g.End()

	clock.Advance(time.Second)
	if err := g.Begin("  Cho mình xem thực đơn "); !errors.Is(err, ErrDuplicateSend) {
		t.Fatalf("Begin() error = %v, want ErrDuplicateSend", err)
	}
	if err := g.Begin("Món khác"); err != nil {
		t.Fatalf("Begin() with new text error = %v", err)
	}
	g.End()

	clock.Advance(5 * time.Second)
	if err := g.Begin("Món khác"); err != nil {
		t.Fatalf("Begin() after cooldown error = %v", err)
	}
	g.End()
}

func TestSendGuard_SingleFlight(t *testing.T) {
	g := NewSendGuard(time.Second)
	if err := g.Begin("a"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := g.Begin("b"); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("Begin() error = %v, want ErrSendInFlight", err)
	}
	if !g.InFlight() {
		t.Fatalf("InFlight() = false")
	}
	g.End()
	if err := g.Begin("b"); err != nil {
		t.Fatalf("Begin() after End error = %v", err)
	}
}

func TestResolveIdentity_PersistsUserID(t *testing.T) {
	ctx := context.Background()
	device := newStubDevice()

	first, err := ResolveIdentity(ctx, device, "dev1")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if !strings.HasPrefix(first.UserID, "guest_") || first.SessionID == "" {
		t.Fatalf("identity = %+v", first)
	}
	second, err := ResolveIdentity(ctx, device, "dev1")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if second.UserID != first.UserID {
		t.Fatalf("UserID changed across visits: %q -> %q", first.UserID, second.UserID)
	}
	if second.SessionID == first.SessionID {
		t.Fatalf("SessionID reused across sessions")
	}
}
