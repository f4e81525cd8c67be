package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
	"github.com/yourusername/storefront-chat/internal/metrics"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

// PollCallbacks are invoked from the polling goroutine.
type PollCallbacks struct {
	// OnConfirmed runs once when the order is paid or manually confirmed.
	OnConfirmed func(orderID string)
	// OnNotFound runs when the gateway reports the order does not exist.
	OnNotFound func(orderID string)
}

// PaymentPoller keeps at most one live poll session per order id.
type PaymentPoller struct {
	gateway  repository.PaymentGateway
	interval time.Duration
	metrics  *metrics.Collector

	mu       sync.Mutex
	sessions map[string]*PollSession
}

// NewPaymentPoller creates a poller; interval <= 0 uses the default.
func NewPaymentPoller(gateway repository.PaymentGateway, interval time.Duration, m *metrics.Collector) *PaymentPoller {
	if interval <= 0 {
		interval = constants.DefaultPaymentPollInterval
	}
	return &PaymentPoller{
		gateway:  gateway,
		interval: interval,
		metrics:  m,
		sessions: make(map[string]*PollSession),
	}
}

// Start begins polling orderID. A live session for the same order is returned as is.
func (p *PaymentPoller) Start(ctx context.Context, orderID string, cb PollCallbacks) *PollSession {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sessions[orderID]; ok && !s.Status().Terminal() {
		return s
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &PollSession{
		orderID:   orderID,
		status:    entity.PollIdle,
		gateway:   p.gateway,
		callbacks: cb,
		metrics:   p.metrics,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	p.sessions[orderID] = s
	s.setStatus(entity.PollPolling)
	logger.InfoLogger.Printf("💳 To'lov kuzatuvi boshlandi: %s", orderID)
	go s.run(sctx, p.interval)
	return s
}

// Session returns the session for an order, if any.
func (p *PaymentPoller) Session(orderID string) (*PollSession, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[orderID]
	return s, ok
}

// Active counts sessions that are still polling.
func (p *PaymentPoller) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.sessions {
		if !s.Status().Terminal() {
			n++
		}
	}
	return n
}

// StopAll stops every session without callbacks.
func (p *PaymentPoller) StopAll() {
	p.mu.Lock()
	sessions := make([]*PollSession, 0, len(p.sessions))
	for _, s := range p.sessions {
		sessions = append(sessions, s)
	}
	p.sessions = make(map[string]*PollSession)
	p.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
}

// PollSession polls one order's payment status until a terminal state.
type PollSession struct {
	orderID   string
	gateway   repository.PaymentGateway
	callbacks PollCallbacks
	metrics   *metrics.Collector

	mu     sync.Mutex
	status entity.PollStatus

	inFlight    atomic.Bool
	checks      atomic.Int64
	cancel      context.CancelFunc
	done        chan struct{}
	doneOnce    sync.Once
	confirmOnce sync.Once
	wg          sync.WaitGroup
}

// OrderID returns the polled order id.
func (s *PollSession) OrderID() string { return s.orderID }

// Status returns the current state.
func (s *PollSession) Status() entity.PollStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Checks returns how many status checks were issued.
func (s *PollSession) Checks() int64 { return s.checks.Load() }

// Done is closed when the session reaches a terminal state.
func (s *PollSession) Done() <-chan struct{} { return s.done }

func (s *PollSession) setStatus(st entity.PollStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *PollSession) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.finish(entity.PollStopped)
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick starts a check unless the previous one is still running.
func (s *PollSession) tick(ctx context.Context) {
	if s.Status().Terminal() || ctx.Err() != nil {
		return
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return
	}
	s.checks.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Store(false)
		s.check(ctx)
	}()
}

func (s *PollSession) check(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, constants.PaymentCheckTimeout)
	defer cancel()

	status, err := s.gateway.CheckStatus(cctx, s.orderID)
	if s.Status().Terminal() {
		return
	}
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		s.metrics.PaymentCheck("not_found")
		if s.finish(entity.PollNotFound) {
			logger.WarnLogger.Printf("⚠️ Buyurtma topilmadi: %s", s.orderID)
			if s.callbacks.OnNotFound != nil {
				s.callbacks.OnNotFound(s.orderID)
			}
		}
	case err != nil:
		s.metrics.PaymentCheck("error")
		if ctx.Err() == nil {
			logger.WarnLogger.Printf("⚠️ To'lov holati tekshirilmadi (%s), keyingi urinishda davom etamiz: %v", s.orderID, err)
		}
	case status.Paid():
		s.metrics.PaymentCheck("paid")
		if s.finish(entity.PollPaid) {
			logger.InfoLogger.Printf("✅ To'lov tasdiqlandi: %s", s.orderID)
			s.confirm()
		}
	default:
		s.metrics.PaymentCheck("pending")
	}
}

// finish moves to a terminal state once; later calls report false.
func (s *PollSession) finish(st entity.PollStatus) bool {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return false
	}
	s.status = st
	s.mu.Unlock()

	s.cancel()
	s.doneOnce.Do(func() { close(s.done) })
	return true
}

func (s *PollSession) confirm() {
	s.confirmOnce.Do(func() {
		if s.callbacks.OnConfirmed != nil {
			s.callbacks.OnConfirmed(s.orderID)
		}
	})
}

// ConfirmManually records the customer's "I have paid" action. On success the
// session stops and the confirm callback runs; on failure polling continues.
func (s *PollSession) ConfirmManually(ctx context.Context) (entity.PaymentConfirmation, error) {
	res, err := s.gateway.Confirm(ctx, s.orderID)
	if err != nil {
		return res, err
	}
	if !res.Success {
		return res, nil
	}
	if s.finish(entity.PollStopped) {
		s.confirm()
	}
	return res, nil
}

// Stop ends polling without callbacks. Safe to call repeatedly and from any state.
func (s *PollSession) Stop() {
	s.finish(entity.PollStopped)
}

// Wait blocks until in-flight checks have returned.
func (s *PollSession) Wait() {
	<-s.done
	s.wg.Wait()
}
