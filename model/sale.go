package model

import (
	"time"

	"github.com/Pinto1232/pos-system-sub004/constant"
)

// SaleEvent is an append-only record of a committed stock decrement. A
// return never mutates a past SaleEvent; it is recorded separately.
type SaleEvent struct {
	ProductID   uint64    `json:"product_id" db:"product_id"`
	Quantity    int64     `json:"quantity" db:"quantity"`
	OrderID     string    `json:"order_id" db:"order_id"`
	Timestamp   time.Time `json:"timestamp" db:"created_at"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	TotalAmount float64   `json:"total_amount" db:"total_amount"`
	CustomerID  string    `json:"customer_id,omitempty" db:"customer_id"`
}

type ReturnEvent struct {
	ProductID uint64    `json:"product_id" db:"product_id"`
	Quantity  int64     `json:"quantity" db:"quantity"`
	OrderID   string    `json:"order_id" db:"order_id"`
	Reason    string    `json:"reason,omitempty" db:"reason"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

type SaleRequest struct {
	ProductID uint64  `json:"product_id" validate:"required"`
	Quantity  int64   `json:"quantity" validate:"required"`
	OrderID   string  `json:"order_id" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	// ReservationID links the sale to the reservation it consumes. When
	// empty the sale is a direct sale re-checked against available stock.
	ReservationID string `json:"reservation_id,omitempty"`
	CustomerID    string `json:"customer_id,omitempty"`
}

type ReturnRequest struct {
	ProductID uint64 `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required"`
	OrderID   string `json:"order_id" validate:"required"`
	Reason    string `json:"reason,omitempty"`
}

// StockMutationResult is the structured outcome of ProcessSale and
// ProcessReturn. NewStock is the post-mutation ledger snapshot.
type StockMutationResult struct {
	Success   bool               `json:"success"`
	NewStock  *StockLedgerEntry  `json:"new_stock,omitempty"`
	Error     string             `json:"error,omitempty"`
	ErrorType constant.ErrorType `json:"-"`
}
