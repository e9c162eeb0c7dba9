package model

// StockLedgerEntry is the per-product quantity record. AvailableQuantity is
// always derived from the other two fields; the ledger repository keeps
// LockedQuantity <= TotalStock at all times.
type StockLedgerEntry struct {
	ProductID         uint64 `json:"product_id"`
	TotalStock        int64  `json:"total_stock"`
	LockedQuantity    int64  `json:"locked_quantity"`
	AvailableQuantity int64  `json:"available_quantity"`
}

// ProductStock is the seed row read from the product table at startup.
type ProductStock struct {
	ProductID  uint64 `db:"product_id"`
	TotalStock int64  `db:"total_stock"`
}

type SetStockRequest struct {
	ProductID  uint64 `json:"product_id" validate:"required"`
	TotalStock int64  `json:"total_stock" validate:"gte=0"`
}
