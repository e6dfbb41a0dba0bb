package model

// SaleEvent is the typed request behind action=recordSale. Numeric fields are
// parsed strictly at the boundary; an unparsable saleQty or saleRate is a
// ValidationError, never a silent zero.
type SaleEvent struct {
	ItemName    string  `json:"itemName" validate:"required"`
	BatchNo     string  `json:"batchNo"`
	SalesPerson string  `json:"salesPerson" validate:"required"`
	SaleQty     int     `json:"saleQty" validate:"required,gt=0"`
	SaleRate    float64 `json:"saleRate" validate:"gte=0"`
	Remark      string  `json:"remark"`
	Timestamp   string  `json:"timestamp"`
}

// SalesRecord is one immutable row of the append-only Sales sheet.
type SalesRecord struct {
	Timestamp   string  `json:"timestamp"`
	ItemName    string  `json:"itemName"`
	BatchNo     string  `json:"batchNo"`
	SalesPerson string  `json:"salesPerson"`
	SaleQty     int     `json:"saleQty"`
	SaleRate    float64 `json:"saleRate"`
	Remark      string  `json:"remark"`
}

// SaleResult is what a successful recordSale reports back.
// Timestamp is only set in append mode, where the server may have assigned it.
type SaleResult struct {
	Message   string
	Timestamp string
}
