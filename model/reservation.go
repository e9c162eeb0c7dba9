package model

import (
	"time"

	"github.com/Pinto1232/pos-system-sub004/constant"
)

// Reservation is a time-bound claim against a ledger entry. It exists until
// it is released, expired by the sweeper, or consumed by a sale.
type Reservation struct {
	ID              string                   `json:"id"`
	ProductID       uint64                   `json:"product_id"`
	Quantity        int64                    `json:"quantity"`
	ReservedBy      string                   `json:"reserved_by"`
	ReservationType constant.ReservationType `json:"reservation_type"`
	CreatedAt       time.Time                `json:"created_at"`
	ExpiresAt       time.Time                `json:"expires_at"`
}

type ReserveStockRequest struct {
	ProductID         uint64                   `json:"product_id" validate:"required"`
	Quantity          int64                    `json:"quantity" validate:"required"`
	ReservedBy        string                   `json:"reserved_by"`
	ReservationType   constant.ReservationType `json:"reservation_type"`
	ExpirationMinutes float64                  `json:"expiration_minutes"`
}

// ReserveStockResult is the structured outcome of ReserveStock. Failures are
// reported through Success/Error, never as a panic.
type ReserveStockResult struct {
	Success       bool               `json:"success"`
	ReservationID string             `json:"reservation_id,omitempty"`
	ExpiresAt     time.Time          `json:"expires_at,omitempty"`
	Error         string             `json:"error,omitempty"`
	ErrorType     constant.ErrorType `json:"-"`
}

type ReleaseReservationResult struct {
	Success   bool               `json:"success"`
	Error     string             `json:"error,omitempty"`
	ErrorType constant.ErrorType `json:"-"`
}
