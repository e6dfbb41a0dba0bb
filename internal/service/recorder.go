package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go-sheet-sales/internal/model"
	"go-sheet-sales/internal/rowstore"
	"go-sheet-sales/internal/ws"
	"go-sheet-sales/pkg/validator"
)

// Mode selects the reconciliation strategy for recordSale.
type Mode string

const (
	// ModeMerge aggregates the sale into the matching inventory row:
	// cumulative quantity, weighted-average rate, deduplicated salespersons.
	ModeMerge Mode = "merge"
	// ModeAppend logs each sale as an immutable row of the Sales sheet.
	ModeAppend Mode = "append"
)

type SaleRecorder interface {
	RecordSale(ev *model.SaleEvent) (*model.SaleResult, error)
}

type saleRecorder struct {
	store          rowstore.Store
	hub            *ws.Hub
	mode           Mode
	inventorySheet string
	locks          *keyLock
	now            func() time.Time
}

// NewSaleRecorder wires a recorder. hub may be nil when no fanout is wanted.
func NewSaleRecorder(store rowstore.Store, hub *ws.Hub, mode Mode, inventorySheet string) SaleRecorder {
	if inventorySheet == "" {
		inventorySheet = DefaultInventorySheetName
	}
	return &saleRecorder{
		store:          store,
		hub:            hub,
		mode:           mode,
		inventorySheet: inventorySheet,
		locks:          newKeyLock(),
		now:            time.Now,
	}
}

func (s *saleRecorder) RecordSale(ev *model.SaleEvent) (*model.SaleResult, error) {
	ev.ItemName = strings.TrimSpace(ev.ItemName)
	ev.BatchNo = strings.TrimSpace(ev.BatchNo)
	ev.SalesPerson = strings.TrimSpace(ev.SalesPerson)

	if errs := validator.ValidateStruct(ev); len(errs) > 0 {
		return nil, model.NewValidationError("Missing required fields: itemName, salesPerson, saleQty")
	}

	if s.mode == ModeAppend {
		return s.recordAppend(ev)
	}
	return s.recordMerge(ev)
}

// recordMerge is the core reconciliation: find the (itemName, batchNo) row
// and fold the sale into it. The per-key lock closes the read-modify-write
// race between concurrent sales of the same batch.
func (s *saleRecorder) recordMerge(ev *model.SaleEvent) (*model.SaleResult, error) {
	lock := s.locks.get(ev.ItemName + "\x00" + ev.BatchNo)
	lock.Lock()
	defer lock.Unlock()

	tbl, err := s.store.Table(s.inventorySheet)
	if err != nil {
		return nil, model.NewNotFoundError("Inventory sheet not found: %s", s.inventorySheet)
	}
	rows, err := tbl.Rows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.NewSchemaError(s.inventorySheet, colItemName)
	}

	header := rows[0]
	idxItem, err := findColumn(s.inventorySheet, header, colItemName)
	if err != nil {
		return nil, err
	}
	idxBatch, err := findColumn(s.inventorySheet, header, colBatchNo)
	if err != nil {
		return nil, err
	}
	idxPerson, err := findColumn(s.inventorySheet, header, colSalesPerson)
	if err != nil {
		return nil, err
	}
	idxQty, err := findColumn(s.inventorySheet, header, colSaleQty)
	if err != nil {
		return nil, err
	}
	idxRate, err := findColumn(s.inventorySheet, header, colSaleRate)
	if err != nil {
		return nil, err
	}

	var existing *model.InventoryRow
	for i := 1; i < len(rows); i++ {
		name := strings.TrimSpace(cellAt(rows[i], idxItem))
		batch := strings.TrimSpace(cellAt(rows[i], idxBatch))
		if name == ev.ItemName && batch == ev.BatchNo {
			existing = &model.InventoryRow{
				Index:       i,
				ItemName:    name,
				BatchNo:     batch,
				SalesPerson: cellAt(rows[i], idxPerson),
				SaleQty:     parseIntOrZero(cellAt(rows[i], idxQty)),
				SaleRate:    parseFloatOrZero(cellAt(rows[i], idxRate)),
			}
			break
		}
	}
	if existing == nil {
		return nil, model.NewNotFoundError("Product not found: %s (Batch: %s)", ev.ItemName, ev.BatchNo)
	}

	newQty := existing.SaleQty + ev.SaleQty
	newRate := ev.SaleRate
	if existing.SaleQty > 0 && existing.SaleRate > 0 {
		newRate = round2((float64(existing.SaleQty)*existing.SaleRate + float64(ev.SaleQty)*ev.SaleRate) / float64(newQty))
	}
	persons := mergeSalesPersons(existing.SalesPerson, ev.SalesPerson)

	// One logical row update. Atomic on memory/postgres backends; on sheets
	// a partial write can land, which the caller cannot observe from the
	// envelope (documented limitation of the storage contract).
	err = tbl.WriteCells(existing.Index, map[int]string{
		idxPerson: persons,
		idxQty:    strconv.Itoa(newQty),
		idxRate:   formatRate(newRate),
	})
	if err != nil {
		return nil, err
	}

	res := &model.SaleResult{
		Message: fmt.Sprintf("Sale recorded: %d units of %s (Batch: %s) @ %s by %s",
			ev.SaleQty, ev.ItemName, ev.BatchNo, formatRate(ev.SaleRate), ev.SalesPerson),
	}
	s.publish(ev, "")
	return res, nil
}

// recordAppend logs the sale on the auto-created Sales sheet, assigning a
// server timestamp when the caller supplied none.
func (s *saleRecorder) recordAppend(ev *model.SaleEvent) (*model.SaleResult, error) {
	ts := ev.Timestamp
	if ts == "" {
		ts = s.now().UTC().Format(time.RFC3339)
	}

	tbl, err := s.store.FindOrCreate(SalesSheetName, SalesHeader)
	if err != nil {
		return nil, err
	}
	err = tbl.Append(rowstore.Row{
		ts,
		ev.ItemName,
		ev.BatchNo,
		ev.SalesPerson,
		strconv.Itoa(ev.SaleQty),
		formatRate(ev.SaleRate),
		ev.Remark,
	})
	if err != nil {
		return nil, err
	}

	res := &model.SaleResult{
		Message: fmt.Sprintf("Sale recorded: %d units of %s (Batch: %s) by %s",
			ev.SaleQty, ev.ItemName, ev.BatchNo, ev.SalesPerson),
		Timestamp: ts,
	}
	s.publish(ev, ts)
	return res, nil
}

func (s *saleRecorder) publish(ev *model.SaleEvent, ts string) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(ws.Event{
		Type: "sale_recorded",
		Mode: string(s.mode),
		Message: fmt.Sprintf("%s sold %d units of %s (Batch: %s)",
			ev.SalesPerson, ev.SaleQty, ev.ItemName, ev.BatchNo),
		Sale: &model.SalesRecord{
			Timestamp:   ts,
			ItemName:    ev.ItemName,
			BatchNo:     ev.BatchNo,
			SalesPerson: ev.SalesPerson,
			SaleQty:     ev.SaleQty,
			SaleRate:    ev.SaleRate,
			Remark:      ev.Remark,
		},
	})
}

// mergeSalesPersons folds a contributor into the comma-separated list.
// Containment is a case-insensitive substring check: a name that is a
// substring of an already-recorded name is skipped even when distinct.
// Kept as-is; callers relying on the stored list know this.
func mergeSalesPersons(existing, incoming string) string {
	existing = strings.TrimSpace(existing)
	if existing == "" {
		return incoming
	}
	if strings.Contains(strings.ToLower(existing), strings.ToLower(incoming)) {
		return existing
	}
	return existing + ", " + incoming
}

// round2 rounds half-up to two decimals on the scaled integer.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
