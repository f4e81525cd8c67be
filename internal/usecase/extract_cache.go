package usecase

import (
	"sync"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

// memoEntry is a cached extraction result; ok=false entries are cached too so
// non-matching lines are not rescanned on every re-render.
type memoEntry struct {
	mention entity.Mention
	ok      bool
}

// mentionMemo is a bounded map keyed by the exact input text.
// When full, the oldest inserted entry is evicted.
type mentionMemo struct {
	mu      sync.RWMutex
	entries map[string]memoEntry
	order   []string
	maxSize int

	// Statistics
	hits   int64
	misses int64
}

func newMentionMemo(maxSize int) *mentionMemo {
	if maxSize <= 0 {
		maxSize = constants.DefaultExtractMemoSize
	}
	return &mentionMemo{
		entries: make(map[string]memoEntry),
		maxSize: maxSize,
	}
}

func (m *mentionMemo) get(key string) (memoEntry, bool) {
	m.mu.RLock()
	entry, exists := m.entries[key]
	m.mu.RUnlock()

	m.mu.Lock()
	if exists {
		m.hits++
	} else {
		m.misses++
	}
	m.mu.Unlock()
	return entry, exists
}

func (m *mentionMemo) set(key string, entry memoEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; exists {
		m.entries[key] = entry
		return
	}
	if len(m.entries) >= m.maxSize && len(m.order) > 0 {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
	m.entries[key] = entry
	m.order = append(m.order, key)
}

// stats returns memo statistics
func (m *mentionMemo) stats() (hits, misses int64, size int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits, m.misses, len(m.entries)
}

