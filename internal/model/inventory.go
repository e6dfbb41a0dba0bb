package model

// InventoryRow mirrors one row of the inventory sheet. The (ItemName, BatchNo)
// pair is the identity key; at most one row per key holds the live aggregate.
type InventoryRow struct {
	Index        int // 0-based row index in the sheet, header included
	ItemName     string
	BatchNo      string
	CurrentStock int
	SalesPerson  string
	SaleQty      int
	SaleRate     float64
}

// ProductBatch is one entry of the getProducts view: an available batch of an
// item with its remaining stock.
type ProductBatch struct {
	Batch string `json:"batch"`
	Stock int    `json:"stock"`
}
