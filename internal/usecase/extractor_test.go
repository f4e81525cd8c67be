package usecase

import (
	"testing"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

func TestExtract_Strategies(t *testing.T) {
	cases := []struct {
		line      string
		wantName  string
		wantPrice string
	}{
		{"Salad Cải Mầm Trứng - 89.000₫", "Salad Cải Mầm Trứng", "89.000₫"},
		{"- Phở Bò Tái - 65.000₫", "Phở Bò Tái", "65.000₫"},
		{"1. Cơm Tấm Sườn - 55.000đ", "Cơm Tấm Sườn", "55.000₫"},
		{"Bạn có thể thử món Bún Chả Hà Nội với giá 75.000đ nhé", "Bún Chả Hà Nội", "75.000₫"},
		{"Hôm nay có món Gà Rán giá 45.000đ", "Gà Rán", "45.000₫"},
		{"Trà Đào Cam Sả - 35000", "Trà Đào Cam Sả", "35000₫"},
		{"**Bánh Flan** - 25.000₫ (món tráng miệng)", "Bánh Flan", "25.000₫"},
		{"Món nổi bật hôm nay: Gỏi Cuốn Tôm Thịt - 40.000₫", "Gỏi Cuốn Tôm Thịt", "40.000₫"},
		{"Bánh Mì - Pate Trứng - 30.000₫", "Bánh Mì - Pate Trứng", "30.000₫"},
		{"Chè Ba Màu – 20.000 đồng", "Chè Ba Màu", "20.000₫"},
		{"* **Nem Rán** - 60.000 VND", "Nem Rán", "60.000₫"},
		{"Combo Gia Đình 4 món với giá 399.000đ", "Combo Gia Đình 4 món", "399.000₫"},
		{"Lẩu Thập Cẩm 3 món với giá 250.000đ", "Lẩu Thập Cẩm 3 món", "250.000₫"},
		{"Bạn có thể thử Lẩu Thập Cẩm 3 món với giá 250.000đ", "Lẩu Thập Cẩm 3 món", "250.000₫"},
	}
	e := NewExtractor(0, nil)
	for _, tc := range cases {
		m, ok := e.Extract(tc.line)
		if !ok {
			t.Fatalf("Extract(%q) found nothing", tc.line)
		}
		if m.Name != tc.wantName || m.Price != tc.wantPrice {
			t.Fatalf("Extract(%q) = {%q %q}, want {%q %q}", tc.line, m.Name, m.Price, tc.wantName, tc.wantPrice)
		}
		if m.Kind != entity.KindProduct {
			t.Fatalf("Extract(%q).Kind = %q", tc.line, m.Kind)
		}
	}
}

func TestExtract_Rejects(t *testing.T) {
	e := NewExtractor(0, nil)
	for _, line := range []string{
		"- Bò - 89.000₫",
		"Phở Bò Tái - 65",
		"Xin chào! Bạn cần gì?",
		"Tổng cộng: 449.000₫",
		"Sản phẩm với giá 50.000đ",
		"Món với giá 50.000đ",
		"",
	} {
		if m, ok := e.Extract(line); ok {
			t.Fatalf("Extract(%q) = %+v, want nothing", line, m)
		}
	}
}

func TestExtract_AcceptedMentionsPassGate(t *testing.T) {
	e := NewExtractor(0, nil)
	for _, line := range []string{
		"- Ốc - 12.000₫",
		"Gà - 150.000₫",
		"Lẩu Nấm - 99₫",
		"**Xôi** - 9",
	} {
		m, ok := e.Extract(line)
		if !ok {
			continue
		}
		if runeLen(m.Name) < 3 || len(digitsOnly(m.Price)) < 3 {
			t.Fatalf("Extract(%q) = %+v passed the gate", line, m)
		}
	}
}

func TestExtract_SplitsTotals(t *testing.T) {
	e := NewExtractor(0, nil)
	line := "Lẩu Gà Ác Tiềm Thuốc Bắc - 250.000₫ Tổng cộng: 449.000₫"
	m, ok := e.Extract(line)
	if !ok {
		t.Fatalf("Extract() found nothing")
	}
	if m.Name != "Lẩu Gà Ác Tiềm Thuốc Bắc" || m.Price != "250.000₫" {
		t.Fatalf("Extract() = {%q %q}", m.Name, m.Price)
	}

	item, totals, found := SplitTotals(line)
	if !found || totals != "Tổng cộng: 449.000₫" || item != "Lẩu Gà Ác Tiềm Thuốc Bắc - 250.000₫ " {
		t.Fatalf("SplitTotals() = %q, %q, %v", item, totals, found)
	}
}

func TestExtractCombo(t *testing.T) {
	e := NewExtractor(0, nil)
	m, ok := e.ExtractCombo("- Combo Gia Đình - 299.000₫")
	if !ok || m.Name != "combo Gia Đình" || m.Kind != entity.KindCombo {
		t.Fatalf("ExtractCombo() = %+v, %v", m, ok)
	}
	m, ok = e.ExtractCombo("Combo Gia Đình 4 món với giá 399.000đ")
	if !ok || m.Name != "combo Gia Đình 4 món" || m.Price != "399.000₫" {
		t.Fatalf("ExtractCombo() = %+v, %v; want combo Gia Đình 4 món", m, ok)
	}
	if _, ok := e.ExtractCombo("- Phở Bò Tái - 65.000₫"); ok {
		t.Fatalf("ExtractCombo() matched a line without combo")
	}
	m, ok = e.ExtractAny("- Phở Bò Tái - 65.000₫")
	if !ok || m.Kind != entity.KindProduct {
		t.Fatalf("ExtractAny() = %+v, %v", m, ok)
	}
}

func TestExtract_Memoized(t *testing.T) {
	e := NewExtractor(0, nil)
	line := "Salad Cải Mầm Trứng - 89.000₫"
	first, _ := e.Extract(line)
	second, _ := e.Extract(line)
	if first != second {
		t.Fatalf("memoized result differs: %+v vs %+v", first, second)
	}
	e.Extract("no mention here")
	e.Extract("no mention here")

	hits, misses, size := e.MemoStats()
	if hits != 2 || misses != 2 || size != 2 {
		t.Fatalf("MemoStats() = %d, %d, %d; want 2, 2, 2", hits, misses, size)
	}
}

func TestMentionMemo_EvictsOldest(t *testing.T) {
	m := newMentionMemo(2)
	m.set("a", memoEntry{})
	m.set("b", memoEntry{})
	m.set("c", memoEntry{})
	if _, ok := m.get("a"); ok {
		t.Fatalf("oldest entry survived eviction")
	}
	if _, ok := m.get("c"); !ok {
		t.Fatalf("newest entry missing")
	}
}
