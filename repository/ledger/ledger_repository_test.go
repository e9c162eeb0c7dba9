package ledger_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Pinto1232/pos-system-sub004/constant"
	"github.com/Pinto1232/pos-system-sub004/model"
	ledgerrepo "github.com/Pinto1232/pos-system-sub004/repository/ledger"
	cerr "github.com/Pinto1232/pos-system-sub004/utils/errors"
)

func seededLedger(t *testing.T, productID uint64, total int64) ledgerrepo.LedgerRepository {
	t.Helper()
	repo := ledgerrepo.NewLedgerRepository()
	repo.SeedStock([]model.ProductStock{{ProductID: productID, TotalStock: total}})
	return repo
}

func assertErrType(t *testing.T, err error, want constant.ErrorType) {
	t.Helper()
	var ce cerr.CustomError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want CustomError", err)
	}
	if ce.ErrorType() != want {
		t.Fatalf("error = %v, want %v", ce.Error(), constant.ErrorTypeMessage[want])
	}
}

func assertEntry(t *testing.T, e *model.StockLedgerEntry, total, locked int64) {
	t.Helper()
	if e == nil {
		t.Fatal("entry is nil")
	}
	if e.TotalStock != total || e.LockedQuantity != locked {
		t.Fatalf("entry = total %d locked %d, want total %d locked %d",
			e.TotalStock, e.LockedQuantity, total, locked)
	}
	if e.AvailableQuantity != e.TotalStock-e.LockedQuantity {
		t.Fatalf("available %d not derived from total %d - locked %d",
			e.AvailableQuantity, e.TotalStock, e.LockedQuantity)
	}
	if e.LockedQuantity < 0 || e.LockedQuantity > e.TotalStock {
		t.Fatalf("invariant violated: locked %d total %d", e.LockedQuantity, e.TotalStock)
	}
}

func TestLedger_Reserve(t *testing.T) {
	repo := seededLedger(t, 1, 10)

	r, stock, err := repo.Reserve(1, 3, "cart-1", constant.ReservationTypeCart, time.Minute)
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if r.ID == "" {
		t.Fatal("reservation id is empty")
	}
	if r.ExpiresAt.Sub(r.CreatedAt) != time.Minute {
		t.Fatalf("ttl = %v, want 1m", r.ExpiresAt.Sub(r.CreatedAt))
	}
	assertEntry(t, stock, 10, 3)

	// snapshot reads agree
	assertEntry(t, repo.GetStockInfo(1), 10, 3)
	if got := len(repo.GetProductReservations(1)); got != 1 {
		t.Fatalf("reservations = %d, want 1", got)
	}
}

func TestLedger_Reserve_Failures(t *testing.T) {
	repo := seededLedger(t, 1, 5)

	_, _, err := repo.Reserve(1, 0, "c", constant.ReservationTypeCart, time.Minute)
	assertErrType(t, err, constant.ErrInvalidQuantity)

	_, _, err = repo.Reserve(1, -2, "c", constant.ReservationTypeCart, time.Minute)
	assertErrType(t, err, constant.ErrInvalidQuantity)

	_, _, err = repo.Reserve(99, 1, "c", constant.ReservationTypeCart, time.Minute)
	assertErrType(t, err, constant.ErrUnknownProduct)

	_, _, err = repo.Reserve(1, 6, "c", constant.ReservationTypeCart, time.Minute)
	assertErrType(t, err, constant.ErrInsufficientStock)

	// failed operations leave no partial state behind
	assertEntry(t, repo.GetStockInfo(1), 5, 0)
	if got := len(repo.GetProductReservations(1)); got != 0 {
		t.Fatalf("reservations = %d, want 0", got)
	}
}

func TestLedger_Release_Idempotent(t *testing.T) {
	repo := seededLedger(t, 1, 10)

	r, _, err := repo.Reserve(1, 4, "cart-1", constant.ReservationTypeCart, time.Minute)
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	rel, stock, err := repo.Release(r.ID)
	if err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if rel.Quantity != 4 {
		t.Fatalf("released quantity = %d, want 4", rel.Quantity)
	}
	assertEntry(t, stock, 10, 0)

	// second release of the same id fails, state unchanged
	_, _, err = repo.Release(r.ID)
	assertErrType(t, err, constant.ErrUnknownReservation)
	assertEntry(t, repo.GetStockInfo(1), 10, 0)
}

func TestLedger_CommitSale(t *testing.T) {
	repo := seededLedger(t, 1, 10)

	r, _, err := repo.Reserve(1, 3, "cart-1", constant.ReservationTypeCart, time.Minute)
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	assertEntry(t, repo.GetStockInfo(1), 10, 3)

	stock, err := repo.CommitSale(r.ID, 1, 3)
	if err != nil {
		t.Fatalf("CommitSale() error = %v", err)
	}
	assertEntry(t, stock, 7, 0)

	// the consumed reservation is gone
	_, _, err = repo.Release(r.ID)
	assertErrType(t, err, constant.ErrUnknownReservation)
}

func TestLedger_CommitSale_Failures(t *testing.T) {
	repo := seededLedger(t, 1, 10)

	r, _, _ := repo.Reserve(1, 3, "cart-1", constant.ReservationTypeCart, time.Minute)

	_, err := repo.CommitSale("missing", 1, 3)
	assertErrType(t, err, constant.ErrUnknownReservation)

	// wrong product
	_, err = repo.CommitSale(r.ID, 2, 3)
	assertErrType(t, err, constant.ErrInvalidRequest)

	// quantity mismatch
	_, err = repo.CommitSale(r.ID, 1, 2)
	assertErrType(t, err, constant.ErrInvalidRequest)

	assertEntry(t, repo.GetStockInfo(1), 10, 3)
}

func TestLedger_DirectSale(t *testing.T) {
	repo := seededLedger(t, 1, 5)

	stock, err := repo.DirectSale(1, 5)
	if err != nil {
		t.Fatalf("DirectSale() error = %v", err)
	}
	assertEntry(t, stock, 0, 0)

	_, err = repo.DirectSale(1, 1)
	assertErrType(t, err, constant.ErrInsufficientStock)
}

func TestLedger_DirectSale_RespectsLockedQuantity(t *testing.T) {
	repo := seededLedger(t, 1, 10)

	if _, _, err := repo.Reserve(1, 8, "cart-1", constant.ReservationTypeCart, time.Minute); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	// only 2 units are available; a direct sale of 3 must fail
	_, err := repo.DirectSale(1, 3)
	assertErrType(t, err, constant.ErrInsufficientStock)

	stock, err := repo.DirectSale(1, 2)
	if err != nil {
		t.Fatalf("DirectSale() error = %v", err)
	}
	assertEntry(t, stock, 8, 8)
}

func TestLedger_Return(t *testing.T) {
	repo := seededLedger(t, 1, 7)

	stock, err := repo.Return(1, 3)
	if err != nil {
		t.Fatalf("Return() error = %v", err)
	}
	assertEntry(t, stock, 10, 0)

	// returns create missing entries (product sold before a restart)
	stock, err = repo.Return(42, 2)
	if err != nil {
		t.Fatalf("Return() error = %v", err)
	}
	assertEntry(t, stock, 2, 0)

	_, err = repo.Return(1, 0)
	assertErrType(t, err, constant.ErrInvalidQuantity)
}

func TestLedger_SetStock(t *testing.T) {
	repo := seededLedger(t, 1, 10)

	if _, _, err := repo.Reserve(1, 4, "cart-1", constant.ReservationTypeCart, time.Minute); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	// lowering total below locked violates the invariant
	_, err := repo.SetStock(1, 3)
	assertErrType(t, err, constant.ErrInsufficientStock)

	stock, err := repo.SetStock(1, 4)
	if err != nil {
		t.Fatalf("SetStock() error = %v", err)
	}
	assertEntry(t, stock, 4, 4)

	_, err = repo.SetStock(1, -1)
	assertErrType(t, err, constant.ErrInvalidQuantity)
}

func TestLedger_ReleaseExpired(t *testing.T) {
	repo := seededLedger(t, 1, 10)

	expired, _, err := repo.Reserve(1, 3, "cart-1", constant.ReservationTypeCart, time.Millisecond)
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if _, _, err := repo.Reserve(1, 2, "cart-2", constant.ReservationTypeCart, time.Hour); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	reclaimed := repo.ReleaseExpired(time.Now().UTC())
	if len(reclaimed) != 1 {
		t.Fatalf("reclaimed = %d, want 1", len(reclaimed))
	}
	if reclaimed[0].Reservation.ID != expired.ID {
		t.Fatalf("reclaimed id = %s, want %s", reclaimed[0].Reservation.ID, expired.ID)
	}
	assertEntry(t, &reclaimed[0].NewStock, 10, 2)

	// a second sweep finds nothing
	if got := len(repo.ReleaseExpired(time.Now().UTC())); got != 0 {
		t.Fatalf("second sweep reclaimed %d, want 0", got)
	}
	assertEntry(t, repo.GetStockInfo(1), 10, 2)
}

func TestLedger_SalesLog(t *testing.T) {
	repo := seededLedger(t, 1, 10)

	repo.AppendSale(model.SaleEvent{ProductID: 1, Quantity: 2, OrderID: "ORDER-1"})
	repo.AppendSale(model.SaleEvent{ProductID: 2, Quantity: 1, OrderID: "ORDER-2"})
	repo.AppendSale(model.SaleEvent{ProductID: 1, Quantity: 4, OrderID: "ORDER-3"})

	if got := len(repo.ListSales(0, 0)); got != 3 {
		t.Fatalf("all sales = %d, want 3", got)
	}
	forProduct := repo.ListSales(1, 0)
	if len(forProduct) != 2 {
		t.Fatalf("product sales = %d, want 2", len(forProduct))
	}
	limited := repo.ListSales(0, 2)
	if len(limited) != 2 {
		t.Fatalf("limited sales = %d, want 2", len(limited))
	}
	if limited[1].OrderID != "ORDER-3" {
		t.Fatalf("limit should keep newest events, got %s", limited[1].OrderID)
	}
}

func TestLedger_ConcurrentReserve_NoOversell(t *testing.T) {
	const (
		total   = 10
		workers = 25
	)
	repo := seededLedger(t, 1, total)

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.Reserve(1, 1, "cart", constant.ReservationTypeCart, time.Minute)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assertErrType(t, err, constant.ErrInsufficientStock)
	}
	if succeeded != total {
		t.Fatalf("succeeded = %d, want exactly %d", succeeded, total)
	}
	assertEntry(t, repo.GetStockInfo(1), total, total)
}
