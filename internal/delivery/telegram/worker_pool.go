package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/storefront-chat/internal/usecase"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

// messageRequest represents a message to be processed
type messageRequest struct {
	ctx    context.Context
	chatID int64
	text   string
}

// workerPool manages parallel processing of messages
type workerPool struct {
	requestQueue chan *messageRequest
	workerCount  int
	handler      *BotHandler
	wg           sync.WaitGroup
	closeOnce    sync.Once

	// Rate limiting per chat
	rateLimiter   map[int64]*chatRateLimit
	rateLimiterMu sync.Mutex
}

// chatRateLimit tracks rate limiting per chat
type chatRateLimit struct {
	lastRequest  time.Time
	requestCount int
}

const (
	maxRequestsPerSecond   = 3
	requestQueueSize       = 100
	defaultWorkerCount     = 16
	chatRequestTimeout     = 45 * time.Second
	rateLimiterCleanupTime = 5 * time.Minute
	rateLimiterMaxIdleTime = 10 * time.Minute
)

const (
	textRateLimited = "⚠️ Bạn gửi hơi nhanh, vui lòng đợi một chút."
	textBusy        = "⚠️ Hệ thống đang bận, vui lòng thử lại sau ít phút."
	textInFlight    = "⏳ Mình đang trả lời tin nhắn trước, bạn đợi chút nhé."
	textTimeout     = "⏱️ Trả lời quá lâu. Bạn vui lòng gửi lại tin nhắn."
	textFailed      = "Xin lỗi, đã có lỗi xảy ra. Bạn vui lòng thử lại."
	textOrderDone   = "🎉 Đặt hàng thành công! Giỏ hàng đã được làm trống."
)

// newWorkerPool creates a new worker pool
func newWorkerPool(handler *BotHandler, workerCount int) *workerPool {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &workerPool{
		requestQueue: make(chan *messageRequest, requestQueueSize),
		workerCount:  workerCount,
		handler:      handler,
		rateLimiter:  make(map[int64]*chatRateLimit),
	}
}

// start starts all workers
func (wp *workerPool) start(ctx context.Context) {
	logger.InfoLogger.Printf("Starting %d workers for parallel message processing", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
	go wp.cleanupRateLimits(ctx)
}

// worker processes messages from the queue
func (wp *workerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-wp.requestQueue:
			if !ok {
				logger.InfoLogger.Printf("Worker %d shutting down (queue closed)", id)
				return
			}
			if req == nil {
				continue
			}
			if !wp.checkRateLimit(req.chatID, time.Now()) {
				wp.handler.sendMessage(req.chatID, textRateLimited)
				continue
			}
			wp.processMessageWithTimeout(req)
		}
	}
}

// processMessageWithTimeout processes a message with context timeout
func (wp *workerPool) processMessageWithTimeout(req *messageRequest) {
	ctx, cancel := context.WithTimeout(req.ctx, chatRequestTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorLogger.Printf("Panic in message processing for chat %d: %v", req.chatID, r)
			wp.handler.sendMessage(req.chatID, textFailed)
		}
	}()
	defer wp.handler.clearWaitingMessage(req.chatID)

	wp.handler.processMessage(ctx, req.chatID, req.text)
}

// processMessage bitta foydalanuvchi xabarini widget orqali o'tkazadi
func (h *BotHandler) processMessage(ctx context.Context, chatID int64, text string) {
	w, err := h.widgetFor(ctx, chatID)
	if err != nil {
		logger.ErrorLogger.Printf("Widget ochilmadi chat=%d: %v", chatID, err)
		h.sendMessage(chatID, textFailed)
		return
	}

	h.showWaiting(chatID)
	reply, err := w.Send(ctx, text)
	switch {
	case errors.Is(err, usecase.ErrDuplicateSend):
		logger.InfoLogger.Printf("Takroriy xabar e'tiborsiz qoldirildi chat=%d", chatID)
		return
	case errors.Is(err, usecase.ErrSendInFlight):
		h.sendMessage(chatID, textInFlight)
		return
	case errors.Is(err, context.DeadlineExceeded):
		h.sendMessage(chatID, textTimeout)
		return
	case err != nil:
		logger.ErrorLogger.Printf("Chat xatosi chat=%d: %v", chatID, err)
		h.sendMessage(chatID, textFailed)
		return
	}

	h.clearWaitingMessage(chatID)
	h.renderInstructions(chatID, reply.Instructions)
	if reply.OrderCompleted {
		h.sendMessage(chatID, textOrderDone)
	}
}

// checkRateLimit checks if chat is within rate limit
func (wp *workerPool) checkRateLimit(chatID int64, now time.Time) bool {
	wp.rateLimiterMu.Lock()
	defer wp.rateLimiterMu.Unlock()

	limiter, exists := wp.rateLimiter[chatID]
	if !exists || now.Sub(limiter.lastRequest) >= time.Second {
		wp.rateLimiter[chatID] = &chatRateLimit{lastRequest: now, requestCount: 1}
		return true
	}
	if limiter.requestCount >= maxRequestsPerSecond {
		logger.WarnLogger.Printf("Rate limit exceeded for chat %d", chatID)
		return false
	}
	limiter.requestCount++
	return true
}

// cleanupRateLimits removes old rate limit entries
func (wp *workerPool) cleanupRateLimits(ctx context.Context) {
	ticker := time.NewTicker(rateLimiterCleanupTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			wp.rateLimiterMu.Lock()
			for chatID, limiter := range wp.rateLimiter {
				if now.Sub(limiter.lastRequest) > rateLimiterMaxIdleTime {
					delete(wp.rateLimiter, chatID)
				}
			}
			wp.rateLimiterMu.Unlock()
		}
	}
}

// submit submits a message to the worker pool
func (wp *workerPool) submit(req *messageRequest) bool {
	select {
	case wp.requestQueue <- req:
		return true
	default:
		logger.WarnLogger.Printf("Worker pool queue is full (%d/%d), rejecting request from chat %d", len(wp.requestQueue), requestQueueSize, req.chatID)
		wp.handler.sendMessage(req.chatID, textBusy)
		return false
	}
}

// shutdown gracefully shuts down the worker pool
func (wp *workerPool) shutdown() {
	wp.closeOnce.Do(func() {
		logger.InfoLogger.Printf("Shutting down worker pool, %d messages in queue", len(wp.requestQueue))
		close(wp.requestQueue)
		wp.wg.Wait()
	})
}
