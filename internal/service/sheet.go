package service

import (
	"strconv"
	"strings"

	"go-sheet-sales/internal/model"
	"go-sheet-sales/internal/rowstore"
)

// Sheet and column names. Columns are located by header name, never by fixed
// index, so reordering columns in the document is safe.
const (
	SalesSheetName            = "Sales"
	DefaultInventorySheetName = "Inventory"

	colItemName     = "Item Name"
	colBatchNo      = "Batch No"
	colCurrentStock = "Current Stock"
	colSalesPerson  = "Sales Person"
	colSaleQty      = "Sale Qty"
	colSaleRate     = "Sale Rate"
)

// SalesHeader is the schema of the auto-created Sales sheet.
var SalesHeader = rowstore.Row{"Timestamp", colItemName, colBatchNo, colSalesPerson, colSaleQty, colSaleRate, "Remark"}

// InventoryHeader is the expected schema of a fresh inventory sheet.
var InventoryHeader = rowstore.Row{colItemName, colBatchNo, colCurrentStock, colSalesPerson, colSaleQty, colSaleRate}

// findColumn locates a header column by trimmed name.
func findColumn(sheet string, header rowstore.Row, name string) (int, error) {
	for i, cell := range header {
		if strings.TrimSpace(cell) == name {
			return i, nil
		}
	}
	return -1, model.NewSchemaError(sheet, name)
}

// cellAt reads a cell, treating short rows as padded with empty cells.
func cellAt(row rowstore.Row, idx int) string {
	if idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

// parseIntOrZero and parseFloatOrZero are the tolerant read-side parsers:
// stored cells that fail to parse count as zero, and zero-quantity rows are
// filtered out by the readers.
func parseIntOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
