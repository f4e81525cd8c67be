package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/metrics"
)

const currencyAlt = `vnđ|vnd|đồng|₫|đ`

var (
	totalsMarkerRe = regexp.MustCompile(`(?i)tổng cộng|tổng\s*:`)
	listNumberRe   = regexp.MustCompile(`^\s*\d{1,2}[.)]\s+`)
	bulletPrefixRe = regexp.MustCompile(`^\s*[*•+]\s+`)
	spacedDashRe   = regexp.MustCompile(`\s+[–—]\s+`)
	markupStripper = strings.NewReplacer("*", "", "_", "", "`", "", "~", "")

	leadingSeparatorRe = regexp.MustCompile(`(?i)^-\s*(.+)\s+-\s+(\d[\d.,]*)\s*(` + currencyAlt + `)?$`)
	voiGiaMarkerRe     = regexp.MustCompile(`(?i)\s*với giá\s*`)
	giaMarkerRe        = regexp.MustCompile(`(?i)\s+giá\s+`)
	markerPriceRe      = regexp.MustCompile(`(?i)^\s*:?\s*(\d[\d.,]*)\s*(` + currencyAlt + `)?`)
	pricedTailRe       = regexp.MustCompile(`(?i)^(\d[\d.,\s]*?)\s*(` + currencyAlt + `)$`)
	bareTailRe         = regexp.MustCompile(`^(\d[\d.,\s]*\d|\d)$`)
	boldNameRe         = regexp.MustCompile(`(?i)\*\*([^*]+?)\*\*\s*[-–—:]\s*(\d[\d.,]*)\s*(` + currencyAlt + `)?`)
	anyPriceRe         = regexp.MustCompile(`(?i)(\d[\d.,]*\d|\d)\s*(` + currencyAlt + `)?`)

	fillerRe          = regexp.MustCompile(`(?i)(?:^|\s)(bạn có thể thử món|bạn có thể thử|thử món|sản phẩm|món|item)(?:\s|$)`)
	trailingVoiRe     = regexp.MustCompile(`(?i)(?:^|\s)với\s*$`)
	trailingFillerRe  = regexp.MustCompile(`(?i)\s+(với|là|có|chỉ)$`)
	sentenceBreakRe   = regexp.MustCompile(`[:;!?]|[.,]\s`)
	nonItemNamePrefix = []string{"tong", "thanh tien", "phi giao hang", "phi ship", "giam gia", "tam tinh"}

	// fillerWords never make a dish name on their own
	fillerWords = map[string]bool{
		"voi": true, "la": true, "co": true, "chi": true, "gia": true, "mon": true,
		"san": true, "pham": true, "item": true, "thu": true, "combo": true, "nhe": true,
	}
)

// extractInput carries both renditions of a line: raw keeps markdown for the
// bold strategy, clean has markup and list numbering removed.
type extractInput struct {
	raw   string
	clean string
}

type mentionStrategy struct {
	name string
	fn   func(in extractInput) (entity.Mention, bool)
}

// mentionStrategies is the priority-ordered cascade; the first accepted candidate wins.
var mentionStrategies = []mentionStrategy{
	{name: "leading_separator", fn: extractLeadingSeparator},
	{name: "voi_gia", fn: markerStrategy(voiGiaMarkerRe, false)},
	{name: "gia", fn: markerStrategy(giaMarkerRe, true)},
	{name: "dash_price", fn: dashPriceStrategy(true, false)},
	{name: "dash_number", fn: dashPriceStrategy(false, false)},
	{name: "bold_name", fn: extractBoldName},
	{name: "prose_dash_price", fn: dashPriceStrategy(true, true)},
	{name: "prose_dash_number", fn: dashPriceStrategy(false, true)},
}

// Extractor detects product and combo mentions in single lines of reply text.
// Results are memoized by the exact input string.
type Extractor struct {
	memo    *mentionMemo
	metrics *metrics.Collector
}

// NewExtractor creates an extractor with a bounded memo.
func NewExtractor(memoSize int, m *metrics.Collector) *Extractor {
	return &Extractor{memo: newMentionMemo(memoSize), metrics: m}
}

// Extract runs the product cascade over the part of line before any totals marker.
func (e *Extractor) Extract(line string) (entity.Mention, bool) {
	return e.memoized("p|"+line, func() (entity.Mention, bool) {
		item, _, _ := SplitTotals(line)
		return runCascade(item, entity.KindProduct)
	})
}

// ExtractCombo runs the cascade only when the line mentions "combo" and returns the
// name prefixed with "combo ".
func (e *Extractor) ExtractCombo(line string) (entity.Mention, bool) {
	return e.memoized("c|"+line, func() (entity.Mention, bool) {
		if !strings.Contains(strings.ToLower(line), "combo") {
			return entity.Mention{}, false
		}
		item, _, _ := SplitTotals(line)
		m, ok := runCascade(item, entity.KindCombo)
		if !ok {
			return entity.Mention{}, false
		}
		base := stripLeadingCombo(m.Name)
		if strings.EqualFold(base, "combo") || strings.TrimSpace(base) == "" {
			return entity.Mention{}, false
		}
		m.Name = "combo " + base
		return m, true
	})
}

// ExtractAny prefers the combo cascade for lines that mention a combo.
func (e *Extractor) ExtractAny(line string) (entity.Mention, bool) {
	if m, ok := e.ExtractCombo(line); ok {
		return m, true
	}
	return e.Extract(line)
}

// MemoStats reports memo hits, misses and size.
func (e *Extractor) MemoStats() (hits, misses int64, size int) {
	return e.memo.stats()
}

func (e *Extractor) memoized(key string, compute func() (entity.Mention, bool)) (entity.Mention, bool) {
	if entry, ok := e.memo.get(key); ok {
		e.metrics.MemoHit()
		return entry.mention, entry.ok
	}
	e.metrics.MemoMiss()
	m, ok := compute()
	e.memo.set(key, memoEntry{mention: m, ok: ok})
	return m, ok
}

// SplitTotals cuts a line at the first "tổng cộng" / "tổng:" marker.
func SplitTotals(line string) (item, totals string, found bool) {
	loc := totalsMarkerRe.FindStringIndex(line)
	if loc == nil {
		return line, "", false
	}
	return line[:loc[0]], line[loc[0]:], true
}

func prepareInput(line string) extractInput {
	raw := strings.TrimSpace(line)
	clean := bulletPrefixRe.ReplaceAllString(raw, "- ")
	clean = listNumberRe.ReplaceAllString(clean, "")
	clean = markupStripper.Replace(clean)
	clean = spacedDashRe.ReplaceAllString(clean, " - ")
	return extractInput{raw: raw, clean: strings.TrimSpace(clean)}
}

func runCascade(line string, kind entity.ItemKind) (entity.Mention, bool) {
	in := prepareInput(line)
	if in.clean == "" {
		return entity.Mention{}, false
	}
	for _, s := range mentionStrategies {
		m, ok := s.fn(in)
		if !ok || !acceptMention(m) {
			continue
		}
		m.Kind = kind
		return m, true
	}
	return entity.Mention{}, false
}

// acceptMention is the gate every strategy's candidate must pass.
func acceptMention(m entity.Mention) bool {
	if runeLen(m.Name) < constants.MinMentionNameRunes {
		return false
	}
	if len(digitsOnly(m.Price)) < constants.MinPriceDigits {
		return false
	}
	key := NormalizeKey(m.Name)
	for _, prefix := range nonItemNamePrefix {
		if strings.HasPrefix(key, prefix) {
			return false
		}
	}
	for _, w := range strings.Fields(key) {
		if !fillerWords[w] {
			return true
		}
	}
	return false
}

func formatPrice(number string) string {
	number = strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	number = strings.TrimRight(number, ".,")
	return number + "₫"
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	for {
		trimmed := trailingFillerRe.ReplaceAllString(name, "")
		if trimmed == name {
			break
		}
		name = trimmed
	}
	return strings.Trim(name, " :,-–.\"'")
}

// trimFiller drops the filler prefix in front of a name ("Hôm nay có món Gà Rán" ->
// "Gà Rán"). It cuts after the rightmost filler that still leaves a name; a filler
// ending the candidate is part of the name ("Lẩu Thập Cẩm 3 món").
func trimFiller(name string) string {
	matches := fillerRe.FindAllStringSubmatchIndex(name, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if rest := strings.TrimSpace(name[matches[i][3]:]); rest != "" {
			return rest
		}
	}
	return strings.TrimSpace(name)
}

// trimToNameStart drops leading tokens until one is capitalized or at least three
// runes long.
func trimToNameStart(name string) string {
	tokens := strings.Fields(name)
	for i, tok := range tokens {
		first := []rune(tok)[0]
		if unicode.IsUpper(first) || runeLen(tok) >= 3 {
			return strings.Join(tokens[i:], " ")
		}
	}
	return ""
}

func extractLeadingSeparator(in extractInput) (entity.Mention, bool) {
	m := leadingSeparatorRe.FindStringSubmatch(in.clean)
	if m == nil {
		return entity.Mention{}, false
	}
	return entity.Mention{Name: cleanName(m[1]), Price: formatPrice(m[2])}, true
}

// markerStrategy reads "Name <marker> Price". skipVoi rejects a marker that is the
// tail of "với giá"; that phrasing belongs to the "với giá" strategy.
func markerStrategy(marker *regexp.Regexp, skipVoi bool) func(in extractInput) (entity.Mention, bool) {
	return func(in extractInput) (entity.Mention, bool) {
		loc := marker.FindStringIndex(in.clean)
		if loc == nil {
			return entity.Mention{}, false
		}
		if skipVoi && trailingVoiRe.MatchString(in.clean[:loc[0]]) {
			return entity.Mention{}, false
		}
		price := markerPriceRe.FindStringSubmatch(in.clean[loc[1]:])
		if price == nil {
			return entity.Mention{}, false
		}
		name := strings.TrimLeft(in.clean[:loc[0]], "-• ")
		name = trimToNameStart(trimFiller(name))
		return entity.Mention{Name: cleanName(name), Price: formatPrice(price[1])}, true
	}
}

// dashPriceStrategy anchors on the last " - ". Without prose the whole prefix must be
// a bare name; with prose the name is whatever follows the last sentence break.
func dashPriceStrategy(requireCurrency, prose bool) func(in extractInput) (entity.Mention, bool) {
	return func(in extractInput) (entity.Mention, bool) {
		idx := strings.LastIndex(in.clean, " - ")
		if idx < 0 {
			return entity.Mention{}, false
		}
		tail := strings.TrimSpace(in.clean[idx+3:])
		var number string
		if requireCurrency {
			m := pricedTailRe.FindStringSubmatch(tail)
			if m == nil {
				return entity.Mention{}, false
			}
			number = m[1]
		} else {
			if !bareTailRe.MatchString(tail) {
				return entity.Mention{}, false
			}
			number = tail
		}

		name := strings.TrimLeft(strings.TrimSpace(in.clean[:idx]), "-• ")
		if !prose {
			if sentenceBreakRe.MatchString(name) {
				return entity.Mention{}, false
			}
		} else {
			if locs := sentenceBreakRe.FindAllStringIndex(name, -1); len(locs) > 0 {
				name = name[locs[len(locs)-1][1]:]
			}
			name = trimToNameStart(trimFiller(strings.TrimSpace(name)))
		}
		return entity.Mention{Name: cleanName(name), Price: formatPrice(number)}, true
	}
}

func extractBoldName(in extractInput) (entity.Mention, bool) {
	m := boldNameRe.FindStringSubmatch(in.raw)
	if m == nil {
		return entity.Mention{}, false
	}
	return entity.Mention{Name: cleanName(m[1]), Price: formatPrice(m[2])}, true
}

// firstPrice pulls the first price-looking number out of a text fragment.
func firstPrice(text string) string {
	for _, m := range anyPriceRe.FindAllStringSubmatch(text, -1) {
		if len(digitsOnly(m[1])) >= constants.MinPriceDigits {
			return formatPrice(m[1])
		}
	}
	return ""
}
