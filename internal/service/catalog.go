package service

import (
	"strings"

	"go-sheet-sales/internal/model"
	"go-sheet-sales/internal/rowstore"
)

// CatalogService builds the client-facing product/stock view.
type CatalogService interface {
	GetProducts() (map[string][]model.ProductBatch, error)
}

type catalogService struct {
	store          rowstore.Store
	inventorySheet string
}

func NewCatalogService(store rowstore.Store, inventorySheet string) CatalogService {
	if inventorySheet == "" {
		inventorySheet = DefaultInventorySheetName
	}
	return &catalogService{store: store, inventorySheet: inventorySheet}
}

// GetProducts groups available batches per item, in scan order. Rows with an
// empty item name or no remaining stock are invisible: callers cannot sell
// what shows no stock. The view is rebuilt on every call, never cached.
func (s *catalogService) GetProducts() (map[string][]model.ProductBatch, error) {
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
	idxStock, err := findColumn(s.inventorySheet, header, colCurrentStock)
	if err != nil {
		return nil, err
	}

	products := make(map[string][]model.ProductBatch)
	for i := 1; i < len(rows); i++ {
		name := strings.TrimSpace(cellAt(rows[i], idxItem))
		batch := strings.TrimSpace(cellAt(rows[i], idxBatch))
		stock := parseIntOrZero(cellAt(rows[i], idxStock))
		if name == "" || stock <= 0 {
			continue
		}
		products[name] = append(products[name], model.ProductBatch{Batch: batch, Stock: stock})
	}
	return products, nil
}
