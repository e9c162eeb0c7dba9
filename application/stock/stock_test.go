package stock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	stockapp "github.com/Pinto1232/pos-system-sub004/application/stock"
	"github.com/Pinto1232/pos-system-sub004/cmd/config"
	"github.com/Pinto1232/pos-system-sub004/constant"
	"github.com/Pinto1232/pos-system-sub004/events"
	mockproduct "github.com/Pinto1232/pos-system-sub004/mocks/repository/product"
	mocksales "github.com/Pinto1232/pos-system-sub004/mocks/repository/sales"
	mocktx "github.com/Pinto1232/pos-system-sub004/mocks/repository/tx"
	"github.com/Pinto1232/pos-system-sub004/model"
	ledgerrepo "github.com/Pinto1232/pos-system-sub004/repository/ledger"
)

// newEngine builds an in-memory engine with one seeded product and no
// optional collaborators.
func newEngine(t *testing.T, productID uint64, total int64) stockapp.StockApp {
	t.Helper()
	ledger := ledgerrepo.NewLedgerRepository()
	ledger.SeedStock([]model.ProductStock{{ProductID: productID, TotalStock: total}})
	return stockapp.NewStockApp(nil, ledger, nil, nil, nil, nil, nil)
}

func assertStock(t *testing.T, e *model.StockLedgerEntry, total, locked, available int64) {
	t.Helper()
	if e == nil {
		t.Fatal("stock entry is nil")
	}
	if e.TotalStock != total || e.LockedQuantity != locked || e.AvailableQuantity != available {
		t.Fatalf("stock = %d/%d/%d, want %d/%d/%d",
			e.TotalStock, e.LockedQuantity, e.AvailableQuantity, total, locked, available)
	}
}

func TestStockApp_ReserveStock(t *testing.T) {
	tests := []struct {
		name      string
		seedTotal int64
		req       *model.ReserveStockRequest
		wantOK    bool
		errType   constant.ErrorType
	}{
		{
			name:      "success",
			seedTotal: 10,
			req:       &model.ReserveStockRequest{ProductID: 1, Quantity: 3, ReservedBy: "cart-1"},
			wantOK:    true,
		},
		{
			name:      "zero quantity",
			seedTotal: 10,
			req:       &model.ReserveStockRequest{ProductID: 1, Quantity: 0, ReservedBy: "cart-1"},
			wantOK:    false,
			errType:   constant.ErrInvalidQuantity,
		},
		{
			name:      "negative quantity",
			seedTotal: 10,
			req:       &model.ReserveStockRequest{ProductID: 1, Quantity: -1, ReservedBy: "cart-1"},
			wantOK:    false,
			errType:   constant.ErrInvalidQuantity,
		},
		{
			name:      "unknown product",
			seedTotal: 10,
			req:       &model.ReserveStockRequest{ProductID: 99, Quantity: 1, ReservedBy: "cart-1"},
			wantOK:    false,
			errType:   constant.ErrUnknownProduct,
		},
		{
			name:      "insufficient stock",
			seedTotal: 2,
			req:       &model.ReserveStockRequest{ProductID: 1, Quantity: 3, ReservedBy: "cart-1"},
			wantOK:    false,
			errType:   constant.ErrInsufficientStock,
		},
		{
			name:      "unknown reservation type",
			seedTotal: 10,
			req:       &model.ReserveStockRequest{ProductID: 1, Quantity: 1, ReservedBy: "cart-1", ReservationType: "bogus"},
			wantOK:    false,
			errType:   constant.ErrInvalidRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newEngine(t, 1, tt.seedTotal)

			res := app.ReserveStock(context.Background(), tt.req)
			if res.Success != tt.wantOK {
				t.Fatalf("Success = %v, want %v (error: %s)", res.Success, tt.wantOK, res.Error)
			}
			if !tt.wantOK {
				if res.ErrorType != tt.errType {
					t.Fatalf("ErrorType = %v, want %v", res.ErrorType, tt.errType)
				}
				if res.Error == "" {
					t.Fatal("failed result carries no error message")
				}
				// failed reserve must not lock anything
				assertStock(t, app.GetStockInfo(context.Background(), 1), tt.seedTotal, 0, tt.seedTotal)
				return
			}
			if res.ReservationID == "" {
				t.Fatal("ReservationID is empty")
			}
			if res.ExpiresAt.IsZero() {
				t.Fatal("ExpiresAt is zero")
			}
			assertStock(t, app.GetStockInfo(context.Background(), 1), tt.seedTotal, tt.req.Quantity, tt.seedTotal-tt.req.Quantity)
		})
	}
}

func TestStockApp_ReserveStock_TTLOverride(t *testing.T) {
	app := newEngine(t, 1, 10)

	before := time.Now().UTC()
	res := app.ReserveStock(context.Background(), &model.ReserveStockRequest{
		ProductID:         1,
		Quantity:          1,
		ReservedBy:        "cart-1",
		ExpirationMinutes: 2,
	})
	if !res.Success {
		t.Fatalf("ReserveStock failed: %s", res.Error)
	}

	ttl := res.ExpiresAt.Sub(before)
	if ttl < 90*time.Second || ttl > 150*time.Second {
		t.Fatalf("ttl = %v, want ~2m", ttl)
	}
}

func TestStockApp_ReleaseReservation(t *testing.T) {
	app := newEngine(t, 1, 10)
	ctx := context.Background()

	res := app.ReserveStock(ctx, &model.ReserveStockRequest{ProductID: 1, Quantity: 4, ReservedBy: "cart-1"})
	if !res.Success {
		t.Fatalf("ReserveStock failed: %s", res.Error)
	}

	rel := app.ReleaseReservation(ctx, res.ReservationID)
	if !rel.Success {
		t.Fatalf("ReleaseReservation failed: %s", rel.Error)
	}
	assertStock(t, app.GetStockInfo(ctx, 1), 10, 0, 10)

	// second release of the same id reports the reservation as unknown
	rel = app.ReleaseReservation(ctx, res.ReservationID)
	if rel.Success {
		t.Fatal("second release succeeded, want failure")
	}
	if rel.ErrorType != constant.ErrUnknownReservation {
		t.Fatalf("ErrorType = %v, want ErrUnknownReservation", rel.ErrorType)
	}
	assertStock(t, app.GetStockInfo(ctx, 1), 10, 0, 10)
}

func TestStockApp_ProcessSale_WithReservation(t *testing.T) {
	app := newEngine(t, 1, 10)
	ctx := context.Background()

	res := app.ReserveStock(ctx, &model.ReserveStockRequest{ProductID: 1, Quantity: 3, ReservedBy: "cart-1"})
	if !res.Success {
		t.Fatalf("ReserveStock failed: %s", res.Error)
	}
	assertStock(t, app.GetStockInfo(ctx, 1), 10, 3, 7)

	sale := app.ProcessSale(ctx, &model.SaleRequest{
		ProductID:     1,
		Quantity:      3,
		OrderID:       "ORDER-1",
		ReservationID: res.ReservationID,
		UnitPrice:     19.99,
	})
	if !sale.Success {
		t.Fatalf("ProcessSale failed: %s", sale.Error)
	}
	assertStock(t, sale.NewStock, 7, 0, 7)

	log := app.GetSalesLog(ctx, 1, 0)
	if len(log) != 1 {
		t.Fatalf("sales log = %d entries, want 1", len(log))
	}
	if log[0].OrderID != "ORDER-1" || log[0].Quantity != 3 {
		t.Fatalf("sale event = %+v", log[0])
	}
	if log[0].TotalAmount != 19.99*3 {
		t.Fatalf("total amount = %v, want %v", log[0].TotalAmount, 19.99*3)
	}

	// the reservation was consumed, not released back
	if rel := app.ReleaseReservation(ctx, res.ReservationID); rel.Success {
		t.Fatal("consumed reservation released, want ErrUnknownReservation")
	}
}

func TestStockApp_ProcessSale_ReservationMismatch(t *testing.T) {
	app := newEngine(t, 1, 10)
	ctx := context.Background()

	res := app.ReserveStock(ctx, &model.ReserveStockRequest{ProductID: 1, Quantity: 3, ReservedBy: "cart-1"})
	if !res.Success {
		t.Fatalf("ReserveStock failed: %s", res.Error)
	}

	sale := app.ProcessSale(ctx, &model.SaleRequest{
		ProductID:     1,
		Quantity:      2, // reservation holds 3
		OrderID:       "ORDER-1",
		ReservationID: res.ReservationID,
	})
	if sale.Success {
		t.Fatal("mismatched sale succeeded, want failure")
	}
	if sale.ErrorType != constant.ErrInvalidRequest {
		t.Fatalf("ErrorType = %v, want ErrInvalidRequest", sale.ErrorType)
	}

	// the reservation survives a failed commit
	assertStock(t, app.GetStockInfo(ctx, 1), 10, 3, 7)
	if got := len(app.GetSalesLog(ctx, 1, 0)); got != 0 {
		t.Fatalf("sales log = %d entries, want 0", got)
	}
}

func TestStockApp_ProcessSale_Direct(t *testing.T) {
	app := newEngine(t, 1, 5)
	ctx := context.Background()

	sale := app.ProcessSale(ctx, &model.SaleRequest{ProductID: 1, Quantity: 5, OrderID: "ORDER-1"})
	if !sale.Success {
		t.Fatalf("ProcessSale failed: %s", sale.Error)
	}
	assertStock(t, sale.NewStock, 0, 0, 0)

	// stock exhausted
	sale = app.ProcessSale(ctx, &model.SaleRequest{ProductID: 1, Quantity: 1, OrderID: "ORDER-2"})
	if sale.Success {
		t.Fatal("oversell succeeded, want failure")
	}
	if sale.ErrorType != constant.ErrInsufficientStock {
		t.Fatalf("ErrorType = %v, want ErrInsufficientStock", sale.ErrorType)
	}
	if got := len(app.GetSalesLog(ctx, 1, 0)); got != 1 {
		t.Fatalf("sales log = %d entries, want 1", got)
	}
}

func TestStockApp_ProcessSale_Validation(t *testing.T) {
	app := newEngine(t, 1, 5)
	ctx := context.Background()

	sale := app.ProcessSale(ctx, &model.SaleRequest{ProductID: 1, Quantity: 0, OrderID: "ORDER-1"})
	if sale.Success || sale.ErrorType != constant.ErrInvalidQuantity {
		t.Fatalf("result = %+v, want ErrInvalidQuantity", sale)
	}

	sale = app.ProcessSale(ctx, &model.SaleRequest{ProductID: 1, Quantity: 1})
	if sale.Success || sale.ErrorType != constant.ErrInvalidRequest {
		t.Fatalf("result = %+v, want ErrInvalidRequest for missing order id", sale)
	}
}

func TestStockApp_ProcessReturn(t *testing.T) {
	app := newEngine(t, 1, 10)
	ctx := context.Background()

	sale := app.ProcessSale(ctx, &model.SaleRequest{ProductID: 1, Quantity: 3, OrderID: "ORDER-1"})
	if !sale.Success {
		t.Fatalf("ProcessSale failed: %s", sale.Error)
	}
	assertStock(t, sale.NewStock, 7, 0, 7)

	ret := app.ProcessReturn(ctx, &model.ReturnRequest{ProductID: 1, Quantity: 3, OrderID: "ORDER-1", Reason: "damaged"})
	if !ret.Success {
		t.Fatalf("ProcessReturn failed: %s", ret.Error)
	}
	assertStock(t, ret.NewStock, 10, 0, 10)

	ret = app.ProcessReturn(ctx, &model.ReturnRequest{ProductID: 1, Quantity: -1, OrderID: "ORDER-1"})
	if ret.Success || ret.ErrorType != constant.ErrInvalidQuantity {
		t.Fatalf("result = %+v, want ErrInvalidQuantity", ret)
	}
}

func TestStockApp_SetStock(t *testing.T) {
	app := newEngine(t, 1, 10)
	ctx := context.Background()

	res := app.ReserveStock(ctx, &model.ReserveStockRequest{ProductID: 1, Quantity: 4, ReservedBy: "cart-1"})
	if !res.Success {
		t.Fatalf("ReserveStock failed: %s", res.Error)
	}

	set := app.SetStock(ctx, &model.SetStockRequest{ProductID: 1, TotalStock: 3})
	if set.Success || set.ErrorType != constant.ErrInsufficientStock {
		t.Fatalf("result = %+v, want ErrInsufficientStock below locked quantity", set)
	}

	set = app.SetStock(ctx, &model.SetStockRequest{ProductID: 1, TotalStock: 20})
	if !set.Success {
		t.Fatalf("SetStock failed: %s", set.Error)
	}
	assertStock(t, set.NewStock, 20, 4, 16)
}

func TestStockApp_Events_OrderAndPayloads(t *testing.T) {
	app := newEngine(t, 1, 10)
	ctx := context.Background()

	var seen []string
	app.Events().On(constant.EventStockReserved, func(e events.Event) {
		ev := e.(events.StockReservedEvent)
		seen = append(seen, "reserved")
		assertStock(t, &ev.NewStock, 10, 3, 7)
	})
	app.Events().On(constant.EventStockReleased, func(e events.Event) {
		ev := e.(events.StockReleasedEvent)
		seen = append(seen, "released")
		assertStock(t, &ev.NewStock, 10, 0, 10)
	})
	app.Events().On(constant.EventStockUpdated, func(e events.Event) {
		ev := e.(events.StockUpdatedEvent)
		seen = append(seen, "updated:"+string(ev.UpdateType))
	})

	res := app.ReserveStock(ctx, &model.ReserveStockRequest{ProductID: 1, Quantity: 3, ReservedBy: "cart-1"})
	app.ReleaseReservation(ctx, res.ReservationID)
	app.ProcessSale(ctx, &model.SaleRequest{ProductID: 1, Quantity: 2, OrderID: "ORDER-1"})
	app.ProcessReturn(ctx, &model.ReturnRequest{ProductID: 1, Quantity: 2, OrderID: "ORDER-1"})

	want := []string{"reserved", "released", "updated:sale", "updated:return"}
	if len(seen) != len(want) {
		t.Fatalf("events = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("events[%d] = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestStockApp_Events_HandlerReadsLedger(t *testing.T) {
	app := newEngine(t, 1, 10)
	ctx := context.Background()

	// a handler reading engine state back must not deadlock and must see
	// the post-mutation ledger
	app.Events().On(constant.EventStockReserved, func(e events.Event) {
		assertStock(t, app.GetStockInfo(ctx, 1), 10, 3, 7)
	})

	res := app.ReserveStock(ctx, &model.ReserveStockRequest{ProductID: 1, Quantity: 3, ReservedBy: "cart-1"})
	if !res.Success {
		t.Fatalf("ReserveStock failed: %s", res.Error)
	}
}

func TestStockApp_SweepExpired(t *testing.T) {
	app := newEngine(t, 1, 10)
	ctx := context.Background()

	var expired []events.ReservationExpiredEvent
	app.Events().On(constant.EventReservationExpired, func(e events.Event) {
		expired = append(expired, e.(events.ReservationExpiredEvent))
	})

	// 0.001 minutes = 60ms
	res := app.ReserveStock(ctx, &model.ReserveStockRequest{
		ProductID:         1,
		Quantity:          3,
		ReservedBy:        "cart-1",
		ExpirationMinutes: 0.001,
	})
	if !res.Success {
		t.Fatalf("ReserveStock failed: %s", res.Error)
	}

	keep := app.ReserveStock(ctx, &model.ReserveStockRequest{ProductID: 1, Quantity: 2, ReservedBy: "cart-2"})
	if !keep.Success {
		t.Fatalf("ReserveStock failed: %s", keep.Error)
	}

	time.Sleep(100 * time.Millisecond)

	if n := app.SweepExpired(ctx); n != 1 {
		t.Fatalf("SweepExpired = %d, want 1", n)
	}
	if len(expired) != 1 {
		t.Fatalf("expired events = %d, want 1", len(expired))
	}
	if expired[0].ReservationID != res.ReservationID {
		t.Fatalf("expired id = %s, want %s", expired[0].ReservationID, res.ReservationID)
	}
	assertStock(t, &expired[0].NewStock, 10, 2, 8)
	assertStock(t, app.GetStockInfo(ctx, 1), 10, 2, 8)

	// releasing an expired reservation reports it unknown
	rel := app.ReleaseReservation(ctx, res.ReservationID)
	if rel.Success || rel.ErrorType != constant.ErrUnknownReservation {
		t.Fatalf("result = %+v, want ErrUnknownReservation", rel)
	}

	if n := app.SweepExpired(ctx); n != 0 {
		t.Fatalf("second sweep = %d, want 0", n)
	}
}

func TestStockApp_Sweeper_Lifecycle(t *testing.T) {
	cfg := &config.Config{
		Stock: config.StockConfig{SweepInterval: 10 * time.Millisecond},
	}
	ledger := ledgerrepo.NewLedgerRepository()
	ledger.SeedStock([]model.ProductStock{{ProductID: 1, TotalStock: 10}})
	app := stockapp.NewStockApp(cfg, ledger, nil, nil, nil, nil, nil)

	expired := make(chan events.ReservationExpiredEvent, 1)
	app.Events().On(constant.EventReservationExpired, func(e events.Event) {
		select {
		case expired <- e.(events.ReservationExpiredEvent):
		default:
		}
	})

	ctx := context.Background()
	app.Start(ctx)
	app.Start(ctx) // idempotent
	defer app.Stop()

	res := app.ReserveStock(ctx, &model.ReserveStockRequest{
		ProductID:         1,
		Quantity:          3,
		ReservedBy:        "cart-1",
		ExpirationMinutes: 0.0005, // 30ms
	})
	if !res.Success {
		t.Fatalf("ReserveStock failed: %s", res.Error)
	}

	select {
	case ev := <-expired:
		if ev.ReservationID != res.ReservationID {
			t.Fatalf("expired id = %s, want %s", ev.ReservationID, res.ReservationID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not reclaim the reservation")
	}
	assertStock(t, app.GetStockInfo(ctx, 1), 10, 0, 10)

	app.Stop()
	app.Stop() // idempotent
}

func TestStockApp_Stop_WithoutStart(t *testing.T) {
	app := newEngine(t, 1, 10)
	app.Stop()
}

func TestStockApp_LoadInitialStock(t *testing.T) {
	tests := []struct {
		name     string
		mockCall func(m *mockproduct.ProductRepository)
		wantErr  bool
	}{
		{
			name: "success",
			mockCall: func(m *mockproduct.ProductRepository) {
				m.On("GetProductStocks", mock.Anything).Return([]model.ProductStock{
					{ProductID: 1, TotalStock: 10},
					{ProductID: 2, TotalStock: 5},
				}, nil)
			},
			wantErr: false,
		},
		{
			name: "query fails",
			mockCall: func(m *mockproduct.ProductRepository) {
				m.On("GetProductStocks", mock.Anything).Return(nil, errors.New("connection refused"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			productRepo := mockproduct.NewProductRepository(t)
			tt.mockCall(productRepo)

			ledger := ledgerrepo.NewLedgerRepository()
			app := stockapp.NewStockApp(nil, ledger, productRepo, nil, nil, nil, nil)

			err := app.LoadInitialStock(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadInitialStock() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			assertStock(t, app.GetStockInfo(context.Background(), 1), 10, 0, 10)
			assertStock(t, app.GetStockInfo(context.Background(), 2), 5, 0, 5)
		})
	}
}

func TestStockApp_ProcessSale_PersistsAudit(t *testing.T) {
	txRepo := mocktx.NewTxRepository(t)
	salesRepo := mocksales.NewSalesRepository(t)

	dbTx := &sqlx.Tx{}
	txRepo.On("BeginTx", mock.Anything).Return(dbTx, nil)
	salesRepo.On("InsertSaleTx", mock.Anything, dbTx, mock.MatchedBy(func(ev *model.SaleEvent) bool {
		return ev.ProductID == 1 && ev.Quantity == 2 && ev.OrderID == "ORDER-1"
	})).Return(nil)
	salesRepo.On("ApplyStockDeltaTx", mock.Anything, dbTx, uint64(1), int64(-2)).Return(nil)
	txRepo.On("CommitTx", dbTx).Return(nil)

	ledger := ledgerrepo.NewLedgerRepository()
	ledger.SeedStock([]model.ProductStock{{ProductID: 1, TotalStock: 10}})
	app := stockapp.NewStockApp(nil, ledger, nil, txRepo, salesRepo, nil, nil)

	sale := app.ProcessSale(context.Background(), &model.SaleRequest{ProductID: 1, Quantity: 2, OrderID: "ORDER-1"})
	if !sale.Success {
		t.Fatalf("ProcessSale failed: %s", sale.Error)
	}
	assertStock(t, sale.NewStock, 8, 0, 8)
}

func TestStockApp_ProcessSale_AuditFailureDoesNotFailSale(t *testing.T) {
	txRepo := mocktx.NewTxRepository(t)
	salesRepo := mocksales.NewSalesRepository(t)

	dbTx := &sqlx.Tx{}
	txRepo.On("BeginTx", mock.Anything).Return(dbTx, nil)
	salesRepo.On("InsertSaleTx", mock.Anything, dbTx, mock.Anything).Return(errors.New("duplicate entry"))
	txRepo.On("RollbackTx", dbTx).Return(nil)

	ledger := ledgerrepo.NewLedgerRepository()
	ledger.SeedStock([]model.ProductStock{{ProductID: 1, TotalStock: 10}})
	app := stockapp.NewStockApp(nil, ledger, nil, txRepo, salesRepo, nil, nil)

	// the in-memory ledger is authoritative; audit write failure is logged
	sale := app.ProcessSale(context.Background(), &model.SaleRequest{ProductID: 1, Quantity: 2, OrderID: "ORDER-1"})
	if !sale.Success {
		t.Fatalf("ProcessSale failed: %s", sale.Error)
	}
	assertStock(t, sale.NewStock, 8, 0, 8)
}

func TestStockApp_ProcessReturn_PersistsAudit(t *testing.T) {
	txRepo := mocktx.NewTxRepository(t)
	salesRepo := mocksales.NewSalesRepository(t)

	dbTx := &sqlx.Tx{}
	txRepo.On("BeginTx", mock.Anything).Return(dbTx, nil)
	salesRepo.On("InsertReturnTx", mock.Anything, dbTx, mock.MatchedBy(func(ev *model.ReturnEvent) bool {
		return ev.ProductID == 1 && ev.Quantity == 3 && ev.Reason == "damaged"
	})).Return(nil)
	salesRepo.On("ApplyStockDeltaTx", mock.Anything, dbTx, uint64(1), int64(3)).Return(nil)
	txRepo.On("CommitTx", dbTx).Return(nil)

	ledger := ledgerrepo.NewLedgerRepository()
	ledger.SeedStock([]model.ProductStock{{ProductID: 1, TotalStock: 7}})
	app := stockapp.NewStockApp(nil, ledger, nil, txRepo, salesRepo, nil, nil)

	ret := app.ProcessReturn(context.Background(), &model.ReturnRequest{ProductID: 1, Quantity: 3, OrderID: "ORDER-1", Reason: "damaged"})
	if !ret.Success {
		t.Fatalf("ProcessReturn failed: %s", ret.Error)
	}
	assertStock(t, ret.NewStock, 10, 0, 10)
}
