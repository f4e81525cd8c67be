package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var searchNormalizeRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// stripDiacritics removes combining marks ("Cá Kho" -> "Ca Kho") and folds the
// Vietnamese stroked d, which has no decomposition.
func stripDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		out = input
	}
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
}

// NormalizeKey lowercases, strips diacritics and collapses everything that is not a
// letter or digit into single spaces.
func NormalizeKey(input string) string {
	input = strings.ToLower(input)
	input = stripDiacritics(input)
	input = searchNormalizeRe.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// importantWordsKey keeps only normalized words longer than three runes.
func importantWordsKey(name string) string {
	var words []string
	for _, w := range strings.Fields(NormalizeKey(name)) {
		if utf8.RuneCountInString(w) > 3 {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

// stripLeadingCombo drops a leading "combo" word: "combo gia dinh" -> "gia dinh".
func stripLeadingCombo(key string) string {
	fields := strings.Fields(key)
	if len(fields) > 1 && strings.EqualFold(fields[0], "combo") {
		return strings.Join(fields[1:], " ")
	}
	return key
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// wordSet returns the distinct words longer than minRunes, in first-seen order.
func wordSet(s string, minRunes int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range strings.Fields(s) {
		if runeLen(w) <= minRunes {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
