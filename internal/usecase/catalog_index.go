package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

type itemRef struct {
	kind entity.ItemKind
	id   string
}

// ambiguousWord marks a word key shared by different items.
const ambiguousWord = -1

// CatalogIndex is an arena of catalog items plus a multi-key lookup over it.
// Keys are not unique across items: the last insert wins, but a key keeps the
// position of its first insertion so iteration order stays stable.
// Important-word keys live apart in wordKeys: exact lookup and substring matching
// never see them, only token overlap does.
type CatalogIndex struct {
	mu        sync.RWMutex
	items     []entity.CatalogItem
	byKey     map[string]int
	keyOrder  []string
	wordKeys  map[string]int
	wordOrder []string
	byID      map[itemRef]int
}

// NewCatalogIndex returns an empty index.
func NewCatalogIndex() *CatalogIndex {
	return &CatalogIndex{
		byKey:    make(map[string]int),
		wordKeys: make(map[string]int),
		byID:     make(map[itemRef]int),
	}
}

// indexKeys lists every key an item is reachable under.
func indexKeys(item entity.CatalogItem) []string {
	lower := strings.ToLower(strings.TrimSpace(item.Name))
	slug := NormalizeKey(item.Name)
	keys := []string{lower, slug}

	if item.Kind == entity.KindCombo {
		base := stripLeadingCombo(slug)
		keys = append(keys, "combo "+base, base)
		if !strings.HasPrefix(lower, "combo") {
			keys = append(keys, "combo "+lower)
		} else {
			keys = append(keys, stripLeadingCombo(lower))
		}
	}
	return keys
}

// Add inserts or replaces an item. Items without a name or id are ignored.
func (c *CatalogIndex) Add(item entity.CatalogItem) bool {
	item.Name = strings.TrimSpace(item.Name)
	item.ID = strings.TrimSpace(item.ID)
	if item.Name == "" || item.ID == "" {
		return false
	}
	if item.Kind == "" {
		item.Kind = entity.KindProduct
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.insert(item, indexKeys(item)...)
	c.insertWordKey(importantWordsKey(item.Name), idx)
	return true
}

func (c *CatalogIndex) insert(item entity.CatalogItem, keys ...string) int {
	ref := itemRef{kind: item.Kind, id: item.ID}
	idx, exists := c.byID[ref]
	if exists {
		if item.ImageRef == "" {
			item.ImageRef = c.items[idx].ImageRef
		}
		c.items[idx] = item
	} else {
		idx = len(c.items)
		c.items = append(c.items, item)
		c.byID[ref] = idx
	}

	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, seen := c.byKey[key]; !seen {
			c.keyOrder = append(c.keyOrder, key)
		}
		c.byKey[key] = idx
	}
	return idx
}

// insertWordKey registers a coarse key. A word key equal to a full key adds
// nothing; one claimed by two different items is kept but marked ambiguous.
func (c *CatalogIndex) insertWordKey(key string, idx int) {
	if key == "" {
		return
	}
	if _, full := c.byKey[key]; full {
		return
	}
	prev, seen := c.wordKeys[key]
	switch {
	case !seen:
		c.wordOrder = append(c.wordOrder, key)
		c.wordKeys[key] = idx
	case prev != idx:
		c.wordKeys[key] = ambiguousWord
	}
}

// Lookup returns the item stored under an exact key.
func (c *CatalogIndex) Lookup(key string) (entity.CatalogItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.byKey[key]
	if !ok {
		return entity.CatalogItem{}, false
	}
	return c.items[idx], true
}

// ByID returns the item with the given identity. A nil index has no items.
func (c *CatalogIndex) ByID(kind entity.ItemKind, id string) (entity.CatalogItem, bool) {
	if c == nil {
		return entity.CatalogItem{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.byID[itemRef{kind: kind, id: id}]
	if !ok {
		return entity.CatalogItem{}, false
	}
	return c.items[idx], true
}

// PatchImage sets ImageRef on an indexed item. Unknown items are a no-op.
func (c *CatalogIndex) PatchImage(kind entity.ItemKind, id, imageRef string) bool {
	if c == nil || strings.TrimSpace(imageRef) == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.byID[itemRef{kind: kind, id: id}]
	if !ok {
		return false
	}
	c.items[idx].ImageRef = imageRef
	return true
}

// eachKey walks full keys in insertion order until fn returns false.
func (c *CatalogIndex) eachKey(fn func(key string, item entity.CatalogItem) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range c.keyOrder {
		if !fn(key, c.items[c.byKey[key]]) {
			return
		}
	}
}

// eachWordKey walks the unambiguous important-word keys in insertion order.
func (c *CatalogIndex) eachWordKey(fn func(key string, item entity.CatalogItem) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range c.wordOrder {
		idx := c.wordKeys[key]
		if idx == ambiguousWord {
			continue
		}
		if !fn(key, c.items[idx]) {
			return
		}
	}
}

// Len counts indexed items of one kind ("" counts all).
func (c *CatalogIndex) Len(kind entity.ItemKind) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if kind == "" {
		return len(c.items)
	}
	n := 0
	for _, item := range c.items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

// Items returns a copy of the arena in insertion order.
func (c *CatalogIndex) Items() []entity.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// replaceWith swaps in the content of fresh. Items that come back without an
// image keep the one already patched in.
func (c *CatalogIndex) replaceWith(fresh *CatalogIndex) {
	fresh.mu.Lock()
	defer fresh.mu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	for ref, idx := range fresh.byID {
		if fresh.items[idx].ImageRef != "" {
			continue
		}
		if old, ok := c.byID[ref]; ok {
			fresh.items[idx].ImageRef = c.items[old].ImageRef
		}
	}
	c.items = fresh.items
	c.byKey = fresh.byKey
	c.keyOrder = fresh.keyOrder
	c.wordKeys = fresh.wordKeys
	c.wordOrder = fresh.wordOrder
	c.byID = fresh.byID
}

// BuildCatalogIndex pages products and then combos from source into a new index.
func BuildCatalogIndex(ctx context.Context, source repository.CatalogSource, pageSize int) *CatalogIndex {
	idx := NewCatalogIndex()
	idx.Fill(ctx, source, pageSize)
	return idx
}

// Fill pages every kind from source into the index. A failing page stops paging
// that kind; whatever was already inserted stays.
func (c *CatalogIndex) Fill(ctx context.Context, source repository.CatalogSource, pageSize int) {
	if source == nil {
		return
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultCatalogPageSize
	}
	for _, kind := range []entity.ItemKind{entity.KindProduct, entity.KindCombo} {
		n := c.fillKind(ctx, source, kind, pageSize)
		logger.InfoLogger.Printf("📚 Katalog: %d ta %s indekslandi", n, kind)
	}
}

func (c *CatalogIndex) fillKind(ctx context.Context, source repository.CatalogSource, kind entity.ItemKind, pageSize int) int {
	added := 0
	for page := 1; page <= constants.MaxCatalogPages; page++ {
		if ctx.Err() != nil {
			return added
		}
		resp, err := source.FetchPage(ctx, kind, page, pageSize)
		if err != nil {
			logger.WarnLogger.Printf("⚠️ Katalog %s sahifa %d olinmadi, qisman indeks bilan davom etamiz: %v", kind, page, err)
			return added
		}
		if len(resp.Items) == 0 {
			return added
		}
		for _, item := range resp.Items {
			item.Kind = kind
			if c.Add(item) {
				added++
			}
		}
		if resp.CurrentPage >= resp.TotalPages {
			return added
		}
	}
	logger.WarnLogger.Printf("⚠️ Katalog %s: %d sahifa chegarasiga yetdi", kind, constants.MaxCatalogPages)
	return added
}
