package service

import (
	"strings"

	"go-sheet-sales/internal/model"
	"go-sheet-sales/internal/rowstore"
)

// SalesReader reads the append-only sales log back out.
type SalesReader interface {
	GetSales() ([]model.SalesRecord, error)
}

type salesReader struct {
	store rowstore.Store
}

func NewSalesReader(store rowstore.Store) SalesReader {
	return &salesReader{store: store}
}

// GetSales returns the log in append order. Rows whose quantity is missing,
// unparsable or non-positive are treated as corrupt and skipped rather than
// failing the whole read.
func (s *salesReader) GetSales() ([]model.SalesRecord, error) {
	tbl, err := s.store.FindOrCreate(SalesSheetName, SalesHeader)
	if err != nil {
		return nil, err
	}
	rows, err := tbl.Rows()
	if err != nil {
		return nil, err
	}

	sales := make([]model.SalesRecord, 0)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		qty := parseIntOrZero(cellAt(row, 4))
		if qty <= 0 {
			continue
		}
		sales = append(sales, model.SalesRecord{
			Timestamp:   strings.TrimSpace(cellAt(row, 0)),
			ItemName:    strings.TrimSpace(cellAt(row, 1)),
			BatchNo:     strings.TrimSpace(cellAt(row, 2)),
			SalesPerson: strings.TrimSpace(cellAt(row, 3)),
			SaleQty:     qty,
			SaleRate:    parseFloatOrZero(cellAt(row, 5)),
			Remark:      strings.TrimSpace(cellAt(row, 6)),
		})
	}
	return sales, nil
}
