package events

import (
	"time"

	"github.com/Pinto1232/pos-system-sub004/constant"
	"github.com/Pinto1232/pos-system-sub004/model"
)

// Event is any stock engine event with a name identifier.
type Event interface {
	EventName() string
}

// StockUpdatedEvent is emitted after a sale or return permanently changes
// TotalStock.
type StockUpdatedEvent struct {
	ProductID  uint64
	UpdateType constant.StockUpdateType
	Quantity   int64
	OrderID    string
	NewStock   model.StockLedgerEntry
	OccurredAt time.Time
}

func (StockUpdatedEvent) EventName() string { return constant.EventStockUpdated }

// StockReservedEvent is emitted when a reservation locks quantity.
type StockReservedEvent struct {
	ReservationID string
	ProductID     uint64
	Quantity      int64
	ReservedBy    string
	ExpiresAt     time.Time
	NewStock      model.StockLedgerEntry
	OccurredAt    time.Time
}

func (StockReservedEvent) EventName() string { return constant.EventStockReserved }

// StockReleasedEvent is emitted when a caller releases a reservation.
type StockReleasedEvent struct {
	ReservationID string
	ProductID     uint64
	Quantity      int64
	ReservedBy    string
	NewStock      model.StockLedgerEntry
	OccurredAt    time.Time
}

func (StockReleasedEvent) EventName() string { return constant.EventStockReleased }

// ReservationExpiredEvent is emitted when the sweeper reclaims a lapsed
// reservation, so consumers can distinguish it from a user release.
type ReservationExpiredEvent struct {
	ReservationID string
	ProductID     uint64
	Quantity      int64
	ReservedBy    string
	NewStock      model.StockLedgerEntry
	OccurredAt    time.Time
}

func (ReservationExpiredEvent) EventName() string { return constant.EventReservationExpired }
