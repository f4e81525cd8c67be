package storage

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
)

const (
	productsSheet = "Products"
	combosSheet   = "Combos"
)

var catalogHeaders = []string{"ID", "Name", "Price", "Image"}

// XLSXCatalog is an offline CatalogSource read from a spreadsheet with one sheet
// per item kind and the columns ID, Name, Price, Image.
type XLSXCatalog struct {
	items map[entity.ItemKind][]entity.CatalogItem
}

// OpenXLSXCatalog reads the whole workbook into memory.
func OpenXLSXCatalog(path string) (*XLSXCatalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog workbook: %w", err)
	}
	defer f.Close()

	c := &XLSXCatalog{items: make(map[entity.ItemKind][]entity.CatalogItem)}
	for kind, sheet := range map[entity.ItemKind]string{entity.KindProduct: productsSheet, entity.KindCombo: combosSheet} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		c.items[kind] = parseCatalogRows(rows, kind)
	}
	return c, nil
}

func parseCatalogRows(rows [][]string, kind entity.ItemKind) []entity.CatalogItem {
	var out []entity.CatalogItem
	for i, row := range rows {
		if i == 0 {
			continue
		}
		cell := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}
		if cell(0) == "" || cell(1) == "" {
			continue
		}
		out = append(out, entity.CatalogItem{
			ID:       cell(0),
			Kind:     kind,
			Name:     cell(1),
			Price:    parsePriceCell(cell(2)),
			ImageRef: cell(3),
		})
	}
	return out
}

// parsePriceCell accepts "89000", "89.000" and "89.000₫".
func parsePriceCell(raw string) int64 {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, _ := strconv.ParseInt(b.String(), 10, 64)
	return n
}

// FetchPage slices the sheet; page numbering starts at 1.
func (c *XLSXCatalog) FetchPage(_ context.Context, kind entity.ItemKind, page, limit int) (entity.CatalogPage, error) {
	items := c.items[kind]
	if limit <= 0 {
		limit = len(items)
	}
	if page < 1 {
		page = 1
	}
	total := 0
	if limit > 0 {
		total = (len(items) + limit - 1) / limit
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return entity.CatalogPage{TotalPages: total, CurrentPage: page}, nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]entity.CatalogItem, end-start)
	copy(out, items[start:end])
	return entity.CatalogPage{Items: out, TotalPages: total, CurrentPage: page}, nil
}

func (c *XLSXCatalog) FetchByID(_ context.Context, kind entity.ItemKind, id string) (*entity.CatalogItem, error) {
	for _, item := range c.items[kind] {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ExportCatalog writes items into a workbook readable by OpenXLSXCatalog.
func ExportCatalog(items []entity.CatalogItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	if err := f.SetSheetName(first, productsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(combosSheet); err != nil {
		return nil, err
	}

	next := map[string]int{productsSheet: 2, combosSheet: 2}
	for _, sheet := range []string{productsSheet, combosSheet} {
		for i, h := range catalogHeaders {
			cell, err := excelize.CoordinatesToCellName(i+1, 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return nil, err
			}
		}
	}
	for _, item := range items {
		sheet := productsSheet
		if item.Kind == entity.KindCombo {
			sheet = combosSheet
		}
		row := next[sheet]
		next[sheet]++
		values := []any{item.ID, item.Name, item.Price, item.ImageRef}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write catalog workbook: %w", err)
	}
	return buf.Bytes(), nil
}
