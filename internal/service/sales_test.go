package service

import (
	"testing"

	"go-sheet-sales/internal/model"
	"go-sheet-sales/internal/rowstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSales_AutoCreatesSheet(t *testing.T) {
	store := rowstore.NewMemoryStore()
	reader := NewSalesReader(store)

	sales, err := reader.GetSales()

	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)

	tbl, err := store.Table(SalesSheetName)
	require.NoError(t, err)
	rows, err := tbl.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, SalesHeader, rows[0])
}

func TestGetSales_ReturnsRecordsInAppendOrder(t *testing.T) {
	store := rowstore.NewMemoryStore()
	tbl, err := store.FindOrCreate(SalesSheetName, SalesHeader)
	require.NoError(t, err)
	require.NoError(t, tbl.Append(rowstore.Row{"2026-01-01T00:00:00Z", "Widget", "B1", "Alice", "5", "130", "cash"}))
	require.NoError(t, tbl.Append(rowstore.Row{"2026-01-02T00:00:00Z", "Gadget", "", "Bob", "2", "19.99", ""}))
	reader := NewSalesReader(store)

	sales, err := reader.GetSales()

	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, model.SalesRecord{
		Timestamp:   "2026-01-01T00:00:00Z",
		ItemName:    "Widget",
		BatchNo:     "B1",
		SalesPerson: "Alice",
		SaleQty:     5,
		SaleRate:    130,
		Remark:      "cash",
	}, sales[0])
	assert.Equal(t, "Gadget", sales[1].ItemName)
	assert.Equal(t, 19.99, sales[1].SaleRate)
}

func TestGetSales_SkipsCorruptRows(t *testing.T) {
	store := rowstore.NewMemoryStore()
	tbl, err := store.FindOrCreate(SalesSheetName, SalesHeader)
	require.NoError(t, err)
	require.NoError(t, tbl.Append(rowstore.Row{"t1", "Widget", "B1", "Alice", "0", "10", ""}))
	require.NoError(t, tbl.Append(rowstore.Row{"t2", "Widget", "B1", "Alice", "-4", "10", ""}))
	require.NoError(t, tbl.Append(rowstore.Row{"t3", "Widget", "B1", "Alice", "junk", "10", ""}))
	require.NoError(t, tbl.Append(rowstore.Row{"t4", "Widget", "B1", "Alice", "", "10", ""}))
	require.NoError(t, tbl.Append(rowstore.Row{"t5", "Widget", "B1", "Alice", "3", "10", ""}))
	reader := NewSalesReader(store)

	sales, err := reader.GetSales()

	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "t5", sales[0].Timestamp)
	assert.Equal(t, 3, sales[0].SaleQty)
}

func TestGetSales_TrimsStringsAndToleratesBadRate(t *testing.T) {
	store := rowstore.NewMemoryStore()
	tbl, err := store.FindOrCreate(SalesSheetName, SalesHeader)
	require.NoError(t, err)
	require.NoError(t, tbl.Append(rowstore.Row{" t1 ", " Widget ", " B1 ", " Alice ", " 5 ", "n/a", " note "}))
	reader := NewSalesReader(store)

	sales, err := reader.GetSales()

	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "Widget", sales[0].ItemName)
	assert.Equal(t, "B1", sales[0].BatchNo)
	assert.Equal(t, "Alice", sales[0].SalesPerson)
	assert.Equal(t, "note", sales[0].Remark)
	assert.Equal(t, 5, sales[0].SaleQty)
	assert.Equal(t, 0.0, sales[0].SaleRate) // unparsable rate reads as zero
}

func TestGetSales_ToleratesShortRows(t *testing.T) {
	store := rowstore.NewMemoryStore()
	tbl, err := store.FindOrCreate(SalesSheetName, SalesHeader)
	require.NoError(t, err)
	require.NoError(t, tbl.Append(rowstore.Row{"t1", "Widget", "B1", "Alice", "2"}))
	reader := NewSalesReader(store)

	sales, err := reader.GetSales()

	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 0.0, sales[0].SaleRate)
	assert.Equal(t, "", sales[0].Remark)
}
