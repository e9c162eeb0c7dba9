package ledger

import (
	"sync"
	"time"

	"github.com/Pinto1232/pos-system-sub004/constant"
	"github.com/Pinto1232/pos-system-sub004/model"
	"github.com/Pinto1232/pos-system-sub004/utils/errors"
	"github.com/google/uuid"
)

// ExpiredReservation pairs a reclaimed reservation with the ledger snapshot
// taken right after its quantity was returned to the available pool.
type ExpiredReservation struct {
	Reservation model.Reservation
	NewStock    model.StockLedgerEntry
}

// LedgerRepository owns the stock ledger, the reservation table and the
// in-memory sales log. It is the single-writer boundary of the engine:
// every method performs its check and its mutation under one lock
// acquisition, so two concurrent reservations can never together exceed
// TotalStock and a failed operation leaves no partial state behind.
//
// All returned entries and reservations are snapshots; callers never hold
// a live reference into the ledger.
type LedgerRepository interface {
	SeedStock(entries []model.ProductStock)
	SetStock(productID uint64, totalStock int64) (*model.StockLedgerEntry, error)

	GetStockInfo(productID uint64) *model.StockLedgerEntry
	GetAllStockLocks() map[uint64]model.StockLedgerEntry
	GetProductReservations(productID uint64) []model.Reservation

	Reserve(productID uint64, quantity int64, reservedBy string, reservationType constant.ReservationType, ttl time.Duration) (*model.Reservation, *model.StockLedgerEntry, error)
	Release(reservationID string) (*model.Reservation, *model.StockLedgerEntry, error)
	ReleaseExpired(now time.Time) []ExpiredReservation

	CommitSale(reservationID string, productID uint64, quantity int64) (*model.StockLedgerEntry, error)
	DirectSale(productID uint64, quantity int64) (*model.StockLedgerEntry, error)
	Return(productID uint64, quantity int64) (*model.StockLedgerEntry, error)

	AppendSale(ev model.SaleEvent)
	ListSales(productID uint64, limit int) []model.SaleEvent
}

type ledgerEntry struct {
	totalStock     int64
	lockedQuantity int64
}

type memoryLedger struct {
	mu           sync.RWMutex
	entries      map[uint64]*ledgerEntry
	reservations map[string]*model.Reservation
	salesLog     []model.SaleEvent
}

func NewLedgerRepository() LedgerRepository {
	return &memoryLedger{
		entries:      make(map[uint64]*ledgerEntry),
		reservations: make(map[string]*model.Reservation),
		salesLog:     make([]model.SaleEvent, 0),
	}
}

func (l *memoryLedger) snapshot(productID uint64, e *ledgerEntry) *model.StockLedgerEntry {
	return &model.StockLedgerEntry{
		ProductID:         productID,
		TotalStock:        e.totalStock,
		LockedQuantity:    e.lockedQuantity,
		AvailableQuantity: e.totalStock - e.lockedQuantity,
	}
}

func (l *memoryLedger) SeedStock(entries []model.ProductStock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, ps := range entries {
		if ps.TotalStock < 0 {
			continue
		}
		l.entries[ps.ProductID] = &ledgerEntry{totalStock: ps.TotalStock}
	}
}

func (l *memoryLedger) SetStock(productID uint64, totalStock int64) (*model.StockLedgerEntry, error) {
	if totalStock < 0 {
		return nil, errors.SetCustomError(constant.ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[productID]
	if !ok {
		e = &ledgerEntry{}
		l.entries[productID] = e
	}
	// lowering total below the locked quantity would break the invariant
	if totalStock < e.lockedQuantity {
		return nil, errors.SetCustomError(constant.ErrInsufficientStock)
	}
	e.totalStock = totalStock
	return l.snapshot(productID, e), nil
}

func (l *memoryLedger) GetStockInfo(productID uint64) *model.StockLedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entries[productID]
	if !ok {
		return nil
	}
	return l.snapshot(productID, e)
}

func (l *memoryLedger) GetAllStockLocks() map[uint64]model.StockLedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[uint64]model.StockLedgerEntry, len(l.entries))
	for id, e := range l.entries {
		out[id] = *l.snapshot(id, e)
	}
	return out
}

func (l *memoryLedger) GetProductReservations(productID uint64) []model.Reservation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Reservation, 0)
	for _, r := range l.reservations {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out
}

func (l *memoryLedger) Reserve(productID uint64, quantity int64, reservedBy string, reservationType constant.ReservationType, ttl time.Duration) (*model.Reservation, *model.StockLedgerEntry, error) {
	if quantity <= 0 {
		return nil, nil, errors.SetCustomError(constant.ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[productID]
	if !ok {
		return nil, nil, errors.SetCustomError(constant.ErrUnknownProduct)
	}
	if e.totalStock-e.lockedQuantity < quantity {
		return nil, nil, errors.SetCustomError(constant.ErrInsufficientStock)
	}

	now := time.Now().UTC()
	r := &model.Reservation{
		ID:              uuid.NewString(),
		ProductID:       productID,
		Quantity:        quantity,
		ReservedBy:      reservedBy,
		ReservationType: reservationType,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}
	e.lockedQuantity += quantity
	l.reservations[r.ID] = r

	res := *r
	return &res, l.snapshot(productID, e), nil
}

func (l *memoryLedger) Release(reservationID string) (*model.Reservation, *model.StockLedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.reservations[reservationID]
	if !ok {
		return nil, nil, errors.SetCustomError(constant.ErrUnknownReservation)
	}
	return l.releaseLocked(r)
}

// releaseLocked unlocks a reservation's quantity and removes the row. The
// caller must hold the write lock.
func (l *memoryLedger) releaseLocked(r *model.Reservation) (*model.Reservation, *model.StockLedgerEntry, error) {
	e, ok := l.entries[r.ProductID]
	if !ok {
		// reservation without a ledger entry cannot happen through the
		// public surface; drop the row so it cannot leak quantity forever
		delete(l.reservations, r.ID)
		return nil, nil, errors.SetCustomError(constant.ErrUnknownProduct)
	}

	e.lockedQuantity -= r.Quantity
	if e.lockedQuantity < 0 {
		e.lockedQuantity = 0
	}
	delete(l.reservations, r.ID)

	res := *r
	return &res, l.snapshot(r.ProductID, e), nil
}

func (l *memoryLedger) ReleaseExpired(now time.Time) []ExpiredReservation {
	l.mu.Lock()
	defer l.mu.Unlock()

	expired := make([]ExpiredReservation, 0)
	for _, r := range l.reservations {
		if now.Before(r.ExpiresAt) {
			continue
		}
		rel, stock, err := l.releaseLocked(r)
		if err != nil {
			continue
		}
		expired = append(expired, ExpiredReservation{Reservation: *rel, NewStock: *stock})
	}
	return expired
}

func (l *memoryLedger) CommitSale(reservationID string, productID uint64, quantity int64) (*model.StockLedgerEntry, error) {
	if quantity <= 0 {
		return nil, errors.SetCustomError(constant.ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.reservations[reservationID]
	if !ok {
		return nil, errors.SetCustomError(constant.ErrUnknownReservation)
	}
	if r.ProductID != productID || r.Quantity != quantity {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}

	e, ok := l.entries[productID]
	if !ok {
		return nil, errors.SetCustomError(constant.ErrUnknownProduct)
	}

	// convert locked quantity into a permanent decrement
	e.totalStock -= quantity
	e.lockedQuantity -= quantity
	if e.lockedQuantity < 0 {
		e.lockedQuantity = 0
	}
	delete(l.reservations, reservationID)

	return l.snapshot(productID, e), nil
}

func (l *memoryLedger) DirectSale(productID uint64, quantity int64) (*model.StockLedgerEntry, error) {
	if quantity <= 0 {
		return nil, errors.SetCustomError(constant.ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[productID]
	if !ok {
		return nil, errors.SetCustomError(constant.ErrUnknownProduct)
	}
	if e.totalStock-e.lockedQuantity < quantity {
		return nil, errors.SetCustomError(constant.ErrInsufficientStock)
	}

	e.totalStock -= quantity
	return l.snapshot(productID, e), nil
}

func (l *memoryLedger) Return(productID uint64, quantity int64) (*model.StockLedgerEntry, error) {
	if quantity <= 0 {
		return nil, errors.SetCustomError(constant.ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[productID]
	if !ok {
		// returns may arrive for products sold before a restart
		e = &ledgerEntry{}
		l.entries[productID] = e
	}

	e.totalStock += quantity
	return l.snapshot(productID, e), nil
}

func (l *memoryLedger) AppendSale(ev model.SaleEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.salesLog = append(l.salesLog, ev)
}

// ListSales returns recorded sale events, newest last. productID 0 means
// all products; limit <= 0 means no limit.
func (l *memoryLedger) ListSales(productID uint64, limit int) []model.SaleEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.SaleEvent, 0)
	for _, ev := range l.salesLog {
		if productID != 0 && ev.ProductID != productID {
			continue
		}
		out = append(out, ev)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
