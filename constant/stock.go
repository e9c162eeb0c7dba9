package constant

import "time"

type ReservationType string

const (
	ReservationTypeCart   ReservationType = "cart"
	ReservationTypeOrder  ReservationType = "order"
	ReservationTypeManual ReservationType = "manual"
)

// ValidReservationTypes is used by request validation before a reservation
// reaches the ledger.
var ValidReservationTypes = map[ReservationType]bool{
	ReservationTypeCart:   true,
	ReservationTypeOrder:  true,
	ReservationTypeManual: true,
}

// Stock event names published on the in-process bus.
const (
	EventStockUpdated       = "stockUpdated"
	EventStockReserved      = "stockReserved"
	EventStockReleased      = "stockReleased"
	EventReservationExpired = "reservationExpired"
)

type StockUpdateType string

const (
	StockUpdateTypeSale   StockUpdateType = "sale"
	StockUpdateTypeReturn StockUpdateType = "return"
)

const (
	DefaultSweepInterval  = 30 * time.Second
	DefaultReservationTTL = 15 * time.Minute
)
