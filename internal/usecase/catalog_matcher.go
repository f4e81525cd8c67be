package usecase

import (
	"strings"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

// ResolveMention maps an extracted name to a catalog item. Strategies are tried in
// order: normalized key, raw lowercase, "combo " + normalized, substring either
// way, token overlap.
func ResolveMention(name string, index *CatalogIndex) (entity.CatalogItem, bool) {
	name = strings.TrimSpace(name)
	if index == nil || runeLen(name) < constants.MinResolveRunes {
		return entity.CatalogItem{}, false
	}
	normalized := NormalizeKey(name)
	lower := strings.ToLower(name)

	if normalized != "" {
		if item, ok := index.Lookup(normalized); ok {
			return item, true
		}
	}
	if item, ok := index.Lookup(lower); ok {
		return item, true
	}
	if normalized != "" {
		if item, ok := index.Lookup("combo " + normalized); ok {
			return item, true
		}
	}
	if normalized == "" {
		return entity.CatalogItem{}, false
	}
	if item, ok := substringMatch(normalized, index); ok {
		return item, true
	}
	return fuzzyMatch(normalized, index)
}

func substringMatch(search string, index *CatalogIndex) (entity.CatalogItem, bool) {
	var found entity.CatalogItem
	ok := false
	index.eachKey(func(key string, item entity.CatalogItem) bool {
		if strings.Contains(key, search) || strings.Contains(search, key) {
			found, ok = item, true
			return false
		}
		return true
	})
	return found, ok
}

// tokenOverlap scores |common| / max(|a|, |b|) over words longer than two runes.
func tokenOverlap(a, b string) (float64, int) {
	wa := wordSet(a, 2)
	wb := wordSet(b, 2)
	if len(wa) == 0 || len(wb) == 0 {
		return 0, 0
	}
	set := make(map[string]struct{}, len(wb))
	for _, w := range wb {
		set[w] = struct{}{}
	}
	common := 0
	for _, w := range wa {
		if _, ok := set[w]; ok {
			common++
		}
	}
	denom := len(wa)
	if len(wb) > denom {
		denom = len(wb)
	}
	return float64(common) / float64(denom), common
}

// fuzzyMatch keeps the first key (insertion order) among equal top scores. Full
// keys are scored before important-word keys; a word key only counts when the
// search carries every one of its words and there are at least two.
func fuzzyMatch(search string, index *CatalogIndex) (entity.CatalogItem, bool) {
	var best entity.CatalogItem
	bestScore := 0.0
	found := false
	consider := func(score float64, common int, item entity.CatalogItem) {
		if common == 0 || score < constants.FuzzyAcceptScore {
			return
		}
		if !found || score > bestScore {
			best, bestScore, found = item, score, true
		}
	}
	index.eachKey(func(key string, item entity.CatalogItem) bool {
		score, common := tokenOverlap(search, key)
		consider(score, common, item)
		return true
	})
	index.eachWordKey(func(key string, item entity.CatalogItem) bool {
		score, common := tokenOverlap(search, key)
		if common < 2 || common < len(wordSet(key, 2)) {
			return true
		}
		consider(score, common, item)
		return true
	})
	return best, found
}
