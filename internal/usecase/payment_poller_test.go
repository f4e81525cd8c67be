package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
)

type scriptedGateway struct {
	mu       sync.Mutex
	script   []func() (entity.PaymentStatus, error)
	calls    int
	confirm  entity.PaymentConfirmation
	block    chan struct{}
	confirms int
}

func (g *scriptedGateway) CheckStatus(ctx context.Context, orderID string) (entity.PaymentStatus, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	block := g.block
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return entity.PaymentStatus{}, ctx.Err()
		}
	}
	if len(g.script) == 0 {
		return pending()
	}
	if n > len(g.script) {
		n = len(g.script)
	}
	return g.script[n-1]()
}

func (g *scriptedGateway) Confirm(ctx context.Context, orderID string) (entity.PaymentConfirmation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirms++
	return g.confirm, nil
}

func (g *scriptedGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func pending() (entity.PaymentStatus, error) {
	return entity.PaymentStatus{Success: true, PaymentStatus: "pending"}, nil
}

func paid() (entity.PaymentStatus, error) {
	return entity.PaymentStatus{Success: true, PaymentStatus: "paid"}, nil
}

func notFound() (entity.PaymentStatus, error) {
	return entity.PaymentStatus{}, repository.ErrOrderNotFound
}

func transient() (entity.PaymentStatus, error) {
	return entity.PaymentStatus{}, errors.New("timeout")
}

func waitDone(t *testing.T, s *PollSession) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session %s did not finish, status %s", s.OrderID(), s.Status())
	}
	s.Wait()
}

func TestPoller_PaidStopsChecks(t *testing.T) {
	gw := &scriptedGateway{script: []func() (entity.PaymentStatus, error){pending, pending, paid}}
	var confirmed atomic.Int32
	p := NewPaymentPoller(gw, 5*time.Millisecond, nil)

	s := p.Start(context.Background(), "o1", PollCallbacks{
		OnConfirmed: func(string) { confirmed.Add(1) },
	})
	waitDone(t, s)

	calls := gw.Calls()
	time.Sleep(40 * time.Millisecond)
	if gw.Calls() != calls {
		t.Fatalf("checks continued after Paid: %d -> %d", calls, gw.Calls())
	}
	if s.Status() != entity.PollPaid || confirmed.Load() != 1 {
		t.Fatalf("status = %s, confirmed = %d", s.Status(), confirmed.Load())
	}
	s.Stop()
	if s.Status() != entity.PollPaid || confirmed.Load() != 1 {
		t.Fatalf("Stop() changed a terminal session")
	}
}

func TestPoller_NotFoundIsTerminal(t *testing.T) {
	gw := &scriptedGateway{script: []func() (entity.PaymentStatus, error){notFound}}
	var missing, confirmed atomic.Int32
	p := NewPaymentPoller(gw, 5*time.Millisecond, nil)

	s := p.Start(context.Background(), "o1", PollCallbacks{
		OnConfirmed: func(string) { confirmed.Add(1) },
		OnNotFound:  func(string) { missing.Add(1) },
	})
	waitDone(t, s)

	calls := gw.Calls()
	time.Sleep(40 * time.Millisecond)
	if gw.Calls() != calls || calls != 1 {
		t.Fatalf("calls = %d then %d, want 1", calls, gw.Calls())
	}
	if s.Status() != entity.PollNotFound || missing.Load() != 1 || confirmed.Load() != 0 {
		t.Fatalf("status = %s, missing = %d, confirmed = %d", s.Status(), missing.Load(), confirmed.Load())
	}
}

func TestPoller_TransientErrorsKeepPolling(t *testing.T) {
	gw := &scriptedGateway{script: []func() (entity.PaymentStatus, error){transient, transient, paid}}
	p := NewPaymentPoller(gw, 5*time.Millisecond, nil)

	s := p.Start(context.Background(), "o1", PollCallbacks{})
	waitDone(t, s)
	if s.Status() != entity.PollPaid || gw.Calls() < 3 {
		t.Fatalf("status = %s, calls = %d", s.Status(), gw.Calls())
	}
}

func TestPoller_ManualConfirm(t *testing.T) {
	gw := &scriptedGateway{confirm: entity.PaymentConfirmation{Success: true}}
	var confirmed atomic.Int32
	p := NewPaymentPoller(gw, time.Hour, nil)

	s := p.Start(context.Background(), "o1", PollCallbacks{OnConfirmed: func(string) { confirmed.Add(1) }})
	res, err := s.ConfirmManually(context.Background())
	if err != nil || !res.Success {
		t.Fatalf("ConfirmManually() = %+v, %v", res, err)
	}
	waitDone(t, s)
	if s.Status() != entity.PollStopped || confirmed.Load() != 1 {
		t.Fatalf("status = %s, confirmed = %d", s.Status(), confirmed.Load())
	}
	s.Stop()
	s.Stop()
	if confirmed.Load() != 1 {
		t.Fatalf("confirmed = %d after Stop, want 1", confirmed.Load())
	}
}

func TestPoller_FailedManualConfirmKeepsPolling(t *testing.T) {
	gw := &scriptedGateway{confirm: entity.PaymentConfirmation{Success: false, Message: "chưa nhận được tiền"}}
	p := NewPaymentPoller(gw, time.Hour, nil)

	s := p.Start(context.Background(), "o1", PollCallbacks{})
	defer s.Stop()
	if res, _ := s.ConfirmManually(context.Background()); res.Success {
		t.Fatalf("ConfirmManually() reported success")
	}
	if s.Status() != entity.PollPolling {
		t.Fatalf("status = %s, want polling", s.Status())
	}
}

func TestPoller_StopWithoutCallbacks(t *testing.T) {
	gw := &scriptedGateway{}
	var calls atomic.Int32
	p := NewPaymentPoller(gw, time.Hour, nil)
	s := p.Start(context.Background(), "o1", PollCallbacks{
		OnConfirmed: func(string) { calls.Add(1) },
		OnNotFound:  func(string) { calls.Add(1) },
	})

	p.StopAll()
	s.Stop()
	waitDone(t, s)
	if s.Status() != entity.PollStopped || calls.Load() != 0 {
		t.Fatalf("status = %s, callbacks = %d", s.Status(), calls.Load())
	}
}

func TestPoller_SkipsOverlappingTicks(t *testing.T) {
	gw := &scriptedGateway{block: make(chan struct{})}
	p := NewPaymentPoller(gw, 2*time.Millisecond, nil)
	s := p.Start(context.Background(), "o1", PollCallbacks{})

	time.Sleep(30 * time.Millisecond)
	if gw.Calls() != 1 {
		t.Fatalf("calls = %d while first check in flight, want 1", gw.Calls())
	}
	s.Stop()
	waitDone(t, s)
}

func TestPoller_StartReusesLiveSession(t *testing.T) {
	p := NewPaymentPoller(&scriptedGateway{}, time.Hour, nil)
	first := p.Start(context.Background(), "o1", PollCallbacks{})
	second := p.Start(context.Background(), "o1", PollCallbacks{})
	if first != second {
		t.Fatalf("Start() created a second session for a live order")
	}
	first.Stop()
	third := p.Start(context.Background(), "o1", PollCallbacks{})
	if third == first {
		t.Fatalf("Start() reused a stopped session")
	}
	p.StopAll()
}
