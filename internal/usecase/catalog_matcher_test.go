package usecase

import (
	"testing"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

func menuIndex() *CatalogIndex {
	return newTestIndex(
		entity.CatalogItem{ID: "p1", Name: "Salad Cải Mầm Trứng", Price: 89000},
		entity.CatalogItem{ID: "p2", Name: "Bò Lúc Lắc", Price: 120000},
		entity.CatalogItem{ID: "p3", Name: "Cá Kho Làng Vũ Đại", Price: 150000},
		entity.CatalogItem{ID: "p4", Name: "Gà Nướng Mật Ong", Price: 180000},
		entity.CatalogItem{ID: "c1", Kind: entity.KindCombo, Name: "Combo Gia Đình", Price: 299000},
	)
}

func TestResolveMention_CaseAndDiacritics(t *testing.T) {
	idx := menuIndex()
	for _, name := range []string{"ca kho", "Cá Kho", "CÁ KHO", "Cá Kho Làng Vũ Đại"} {
		item, ok := ResolveMention(name, idx)
		if !ok || item.ID != "p3" {
			t.Fatalf("ResolveMention(%q) = %+v, %v; want p3", name, item, ok)
		}
	}
}

func TestResolveMention_ComboPrefix(t *testing.T) {
	idx := menuIndex()
	for _, name := range []string{"combo Gia Đình", "Gia Đình"} {
		item, ok := ResolveMention(name, idx)
		if !ok || item.ID != "c1" {
			t.Fatalf("ResolveMention(%q) = %+v, %v; want c1", name, item, ok)
		}
	}
}

func TestResolveMention_TooShort(t *testing.T) {
	if _, ok := ResolveMention("B", menuIndex()); ok {
		t.Fatalf("ResolveMention() matched a one-rune name")
	}
}

func TestResolveMention_TokenOverlap(t *testing.T) {
	item, ok := ResolveMention("Nướng Mật Ong Thơm", menuIndex())
	if !ok || item.ID != "p4" {
		t.Fatalf("ResolveMention() = %+v, %v; want p4", item, ok)
	}
}

func TestFuzzyMatch_SingleShortTokenRejected(t *testing.T) {
	if item, ok := fuzzyMatch(NormalizeKey("Bò"), menuIndex()); ok {
		t.Fatalf("fuzzyMatch(bo) = %+v, want no match", item)
	}
	if score, _ := tokenOverlap("bo", "bo luc lac"); score >= 0.5 {
		t.Fatalf("tokenOverlap() = %v, want < 0.5", score)
	}
}

func TestFuzzyMatch_TieKeepsInsertionOrder(t *testing.T) {
	lan := entity.CatalogItem{ID: "lan", Name: "Phở Tái Lăn"}
	nam := entity.CatalogItem{ID: "nam", Name: "Phở Tái Nạm"}

	item, ok := ResolveMention("pho tai chin", newTestIndex(lan, nam))
	if !ok || item.ID != "lan" {
		t.Fatalf("ResolveMention() = %+v, %v; want lan", item, ok)
	}
	item, ok = ResolveMention("pho tai chin", newTestIndex(nam, lan))
	if !ok || item.ID != "nam" {
		t.Fatalf("ResolveMention() = %+v, %v; want nam", item, ok)
	}
}

func TestResolveMention_NoMatch(t *testing.T) {
	if item, ok := ResolveMention("Lẩu Thái Hải Sản", menuIndex()); ok {
		t.Fatalf("ResolveMention() = %+v, want no match", item)
	}
}

func TestSubstringMatch_IgnoresImportantWordKeys(t *testing.T) {
	idx := newTestIndex(
		entity.CatalogItem{ID: "p1", Name: "Canh Chua Cá Lóc"},
		entity.CatalogItem{ID: "p2", Name: "Cơm Chiên Hải Sản"},
	)
	if item, ok := substringMatch("com chien duong chau", idx); ok {
		t.Fatalf("substringMatch() = %+v, want no match through the \"chien\" word key", item)
	}
}

func TestResolveMention_SharedWordDoesNotMatch(t *testing.T) {
	idx := newTestIndex(
		entity.CatalogItem{ID: "p1", Name: "Gà Nướng Mật Ong"},
		entity.CatalogItem{ID: "p2", Name: "Sườn Nướng Sả Tắc"},
	)
	if item, ok := ResolveMention("Heo Nướng", idx); ok {
		t.Fatalf("ResolveMention(Heo Nướng) = %+v, want no match", item)
	}
	item, ok := ResolveMention("Sườn Nướng", idx)
	if !ok || item.ID != "p2" {
		t.Fatalf("ResolveMention(Sườn Nướng) = %+v, %v; want p2", item, ok)
	}
}
