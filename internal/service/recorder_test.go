package service

import (
	"testing"
	"time"

	"go-sheet-sales/internal/model"
	"go-sheet-sales/internal/rowstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedInventory(t *testing.T, rows ...rowstore.Row) *rowstore.MemoryStore {
	t.Helper()
	store := rowstore.NewMemoryStore()
	tbl, err := store.FindOrCreate(DefaultInventorySheetName, InventoryHeader)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, tbl.Append(row))
	}
	return store
}

func inventoryRows(t *testing.T, store *rowstore.MemoryStore) []rowstore.Row {
	t.Helper()
	tbl, err := store.Table(DefaultInventorySheetName)
	require.NoError(t, err)
	rows, err := tbl.Rows()
	require.NoError(t, err)
	return rows
}

func TestRecordSale_MergeWeightedRate(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"Widget", "B1", "50", "Alice", "10", "100"})
	rec := NewSaleRecorder(store, nil, ModeMerge, "")

	res, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		BatchNo:     "B1",
		SalesPerson: "Bob",
		SaleQty:     5,
		SaleRate:    130,
	})

	require.NoError(t, err)
	assert.Equal(t, "Sale recorded: 5 units of Widget (Batch: B1) @ 130 by Bob", res.Message)

	row := inventoryRows(t, store)[1]
	assert.Equal(t, "15", row[4])
	assert.Equal(t, "110", row[5]) // (10*100 + 5*130) / 15
	assert.Equal(t, "Alice, Bob", row[3])
	assert.Equal(t, "50", row[2]) // current stock untouched
}

func TestRecordSale_MergeFirstSaleTakesIncomingRate(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"Widget", "B1", "50", "", "0", "0"})
	rec := NewSaleRecorder(store, nil, ModeMerge, "")

	_, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		BatchNo:     "B1",
		SalesPerson: "Alice",
		SaleQty:     3,
		SaleRate:    42.5,
	})

	require.NoError(t, err)
	row := inventoryRows(t, store)[1]
	assert.Equal(t, "3", row[4])
	assert.Equal(t, "42.5", row[5])
	assert.Equal(t, "Alice", row[3])
}

func TestRecordSale_MergeRoundsRateToTwoDecimals(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"Widget", "B1", "50", "Alice", "3", "10"})
	rec := NewSaleRecorder(store, nil, ModeMerge, "")

	_, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		BatchNo:     "B1",
		SalesPerson: "Alice",
		SaleQty:     3,
		SaleRate:    11,
	})

	require.NoError(t, err)
	// (3*10 + 3*11) / 6 = 10.5
	assert.Equal(t, "10.5", inventoryRows(t, store)[1][5])
}

func TestRecordSale_SalespersonContainmentIsCaseInsensitive(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"Widget", "B1", "50", "Alice, Bob", "10", "100"})
	rec := NewSaleRecorder(store, nil, ModeMerge, "")

	_, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		BatchNo:     "B1",
		SalesPerson: "alice",
		SaleQty:     1,
		SaleRate:    100,
	})

	require.NoError(t, err)
	assert.Equal(t, "Alice, Bob", inventoryRows(t, store)[1][3])
}

func TestRecordSale_SalespersonSetWhenEmpty(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"Widget", "B1", "50", "", "10", "100"})
	rec := NewSaleRecorder(store, nil, ModeMerge, "")

	_, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		BatchNo:     "B1",
		SalesPerson: "Carol",
		SaleQty:     1,
		SaleRate:    100,
	})

	require.NoError(t, err)
	assert.Equal(t, "Carol", inventoryRows(t, store)[1][3])
}

func TestRecordSale_MatchesEmptyBatch(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"Widget", "", "50", "Alice", "2", "10"})
	rec := NewSaleRecorder(store, nil, ModeMerge, "")

	_, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		SalesPerson: "Alice",
		SaleQty:     1,
		SaleRate:    10,
	})

	require.NoError(t, err)
	assert.Equal(t, "3", inventoryRows(t, store)[1][4])
}

func TestRecordSale_MatchesTrimmedIdentity(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"  Widget ", " B1 ", "50", "Alice", "2", "10"})
	rec := NewSaleRecorder(store, nil, ModeMerge, "")

	_, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    " Widget",
		BatchNo:     "B1 ",
		SalesPerson: "Alice",
		SaleQty:     1,
		SaleRate:    10,
	})

	require.NoError(t, err)
	assert.Equal(t, "3", inventoryRows(t, store)[1][4])
}

func TestRecordSale_ProductNotFound(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"Widget", "B1", "50", "Alice", "10", "100"})
	rec := NewSaleRecorder(store, nil, ModeMerge, "")
	before := inventoryRows(t, store)

	_, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		BatchNo:     "B9",
		SalesPerson: "Bob",
		SaleQty:     5,
		SaleRate:    130,
	})

	require.Error(t, err)
	assert.IsType(t, &model.NotFoundError{}, err)
	assert.Equal(t, "Product not found: Widget (Batch: B9)", err.Error())
	assert.Equal(t, before, inventoryRows(t, store))
}

func TestRecordSale_InventorySheetMissing(t *testing.T) {
	rec := NewSaleRecorder(rowstore.NewMemoryStore(), nil, ModeMerge, "")

	_, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		SalesPerson: "Alice",
		SaleQty:     1,
	})

	require.Error(t, err)
	assert.IsType(t, &model.NotFoundError{}, err)
}

func TestRecordSale_MissingColumnIsSchemaError(t *testing.T) {
	store := rowstore.NewMemoryStore()
	_, err := store.FindOrCreate(DefaultInventorySheetName,
		rowstore.Row{"Item Name", "Batch No", "Current Stock", "Sales Person", "Sale Qty"})
	require.NoError(t, err)
	rec := NewSaleRecorder(store, nil, ModeMerge, "")

	_, err = rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		SalesPerson: "Alice",
		SaleQty:     1,
	})

	require.Error(t, err)
	assert.IsType(t, &model.SchemaError{}, err)
	assert.Contains(t, err.Error(), "Sale Rate")
}

func TestRecordSale_RejectsInvalidEvents(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"Widget", "B1", "50", "Alice", "10", "100"})
	rec := NewSaleRecorder(store, nil, ModeMerge, "")
	before := inventoryRows(t, store)

	invalid := []*model.SaleEvent{
		{ItemName: "", SalesPerson: "Alice", SaleQty: 1},
		{ItemName: "   ", SalesPerson: "Alice", SaleQty: 1},
		{ItemName: "Widget", SalesPerson: "", SaleQty: 1},
		{ItemName: "Widget", SalesPerson: "Alice", SaleQty: 0},
		{ItemName: "Widget", SalesPerson: "Alice", SaleQty: -3},
	}
	for _, ev := range invalid {
		_, err := rec.RecordSale(ev)
		require.Error(t, err)
		assert.IsType(t, &model.ValidationError{}, err)
	}

	// zero writes on failure
	assert.Equal(t, before, inventoryRows(t, store))
}

func TestRecordSale_AppendMode(t *testing.T) {
	store := rowstore.NewMemoryStore()
	rec := NewSaleRecorder(store, nil, ModeAppend, "").(*saleRecorder)
	rec.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}

	res, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		BatchNo:     "B1",
		SalesPerson: "Alice",
		SaleQty:     5,
		SaleRate:    130,
		Remark:      "cash",
	})

	require.NoError(t, err)
	assert.Equal(t, "Sale recorded: 5 units of Widget (Batch: B1) by Alice", res.Message)
	assert.Equal(t, "2026-08-31T12:00:00Z", res.Timestamp)

	tbl, err := store.Table(SalesSheetName)
	require.NoError(t, err)
	rows, err := tbl.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, SalesHeader, rows[0])
	assert.Equal(t, rowstore.Row{"2026-08-31T12:00:00Z", "Widget", "B1", "Alice", "5", "130", "cash"}, rows[1])
}

func TestRecordSale_AppendModeKeepsCallerTimestamp(t *testing.T) {
	store := rowstore.NewMemoryStore()
	rec := NewSaleRecorder(store, nil, ModeAppend, "")

	res, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		SalesPerson: "Alice",
		SaleQty:     1,
		Timestamp:   "2026-01-02T03:04:05Z",
	})

	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T03:04:05Z", res.Timestamp)
}

func TestRecordSale_AppendModeDoesNotTouchInventory(t *testing.T) {
	store := seedInventory(t, rowstore.Row{"Widget", "B1", "50", "Alice", "10", "100"})
	rec := NewSaleRecorder(store, nil, ModeAppend, "")
	before := inventoryRows(t, store)

	_, err := rec.RecordSale(&model.SaleEvent{
		ItemName:    "Widget",
		BatchNo:     "B1",
		SalesPerson: "Bob",
		SaleQty:     5,
	})

	require.NoError(t, err)
	assert.Equal(t, before, inventoryRows(t, store))
}

func TestMergeSalesPersons(t *testing.T) {
	assert.Equal(t, "Alice", mergeSalesPersons("", "Alice"))
	assert.Equal(t, "Alice, Bob", mergeSalesPersons("Alice", "Bob"))
	assert.Equal(t, "Alice, Bob", mergeSalesPersons("Alice, Bob", "alice"))
	// known limitation: a name that is a substring of a recorded one is skipped
	assert.Equal(t, "Roberta", mergeSalesPersons("Roberta", "Bert"))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 110.0, round2(110.0))
	assert.Equal(t, 0.13, round2(0.125))
	assert.Equal(t, 33.33, round2(100.0/3.0))
}
