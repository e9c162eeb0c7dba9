package stock

import (
	"context"
	goerrors "errors"
	"sync"
	"time"

	"github.com/Pinto1232/pos-system-sub004/cmd/config"
	"github.com/Pinto1232/pos-system-sub004/constant"
	"github.com/Pinto1232/pos-system-sub004/events"
	"github.com/Pinto1232/pos-system-sub004/model"
	ledgerrepo "github.com/Pinto1232/pos-system-sub004/repository/ledger"
	productrepo "github.com/Pinto1232/pos-system-sub004/repository/product"
	salesrepo "github.com/Pinto1232/pos-system-sub004/repository/sales"
	snapshotrepo "github.com/Pinto1232/pos-system-sub004/repository/snapshot"
	txrepo "github.com/Pinto1232/pos-system-sub004/repository/tx"
	"github.com/Pinto1232/pos-system-sub004/thirdparty/rabbitmq"
	"github.com/Pinto1232/pos-system-sub004/utils/errors"
	"github.com/Pinto1232/pos-system-sub004/utils/logger"
	"github.com/Pinto1232/pos-system-sub004/utils/metrics"
	"go.uber.org/zap"
)

// StockApp is the stock reservation and ledger engine. All mutation goes
// through these operations; failures are structured results, never panics.
// Event handlers registered on Events() run synchronously, in registration
// order, after the mutation committed and before the operation returns.
type StockApp interface {
	LoadInitialStock(ctx context.Context) error
	Start(ctx context.Context)
	Stop()

	ReserveStock(ctx context.Context, req *model.ReserveStockRequest) *model.ReserveStockResult
	ReleaseReservation(ctx context.Context, reservationID string) *model.ReleaseReservationResult
	ProcessSale(ctx context.Context, req *model.SaleRequest) *model.StockMutationResult
	ProcessReturn(ctx context.Context, req *model.ReturnRequest) *model.StockMutationResult
	SetStock(ctx context.Context, req *model.SetStockRequest) *model.StockMutationResult
	SweepExpired(ctx context.Context) int

	GetStockInfo(ctx context.Context, productID uint64) *model.StockLedgerEntry
	GetAllStockLocks(ctx context.Context) map[uint64]model.StockLedgerEntry
	GetProductReservations(ctx context.Context, productID uint64) []model.Reservation
	GetSalesLog(ctx context.Context, productID uint64, limit int) []model.SaleEvent

	Events() *events.Bus
}

type stockAppImpl struct {
	config       *config.Config
	ledgerRepo   ledgerrepo.LedgerRepository
	productRepo  productrepo.ProductRepository
	txRepo       txrepo.TxRepository
	salesRepo    salesrepo.SalesRepository
	snapshotRepo snapshotrepo.Repository
	publisher    *rabbitmq.Publisher
	bus          *events.Bus

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewStockApp wires the engine. productRepo, txRepo, salesRepo,
// snapshotRepo and publisher may be nil; the engine then runs purely in
// memory without seeding, persistence, snapshots or broker fanout.
func NewStockApp(
	config *config.Config,
	ledgerRepo ledgerrepo.LedgerRepository,
	productRepo productrepo.ProductRepository,
	txRepo txrepo.TxRepository,
	salesRepo salesrepo.SalesRepository,
	snapshotRepo snapshotrepo.Repository,
	publisher *rabbitmq.Publisher,
) StockApp {
	return &stockAppImpl{
		config:       config,
		ledgerRepo:   ledgerRepo,
		productRepo:  productRepo,
		txRepo:       txRepo,
		salesRepo:    salesRepo,
		snapshotRepo: snapshotRepo,
		publisher:    publisher,
		bus:          events.NewBus(),
		done:         make(chan struct{}),
	}
}

func (s *stockAppImpl) Events() *events.Bus {
	return s.bus
}

// LoadInitialStock seeds the ledger from the product table.
func (s *stockAppImpl) LoadInitialStock(ctx context.Context) error {
	if s.productRepo == nil {
		return nil
	}

	stocks, err := s.productRepo.GetProductStocks(ctx)
	if err != nil {
		logger.Error("[LoadInitialStock] get product stocks", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}

	s.ledgerRepo.SeedStock(stocks)
	logger.Info("[LoadInitialStock] ledger seeded", zap.Int("products", len(stocks)))
	return nil
}

// Start launches the expiration sweeper. Idempotent.
func (s *stockAppImpl) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		sweepCtx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		go s.sweepLoop(sweepCtx)
		logger.Info("stock engine started", zap.Duration("sweep_interval", s.sweepInterval()))
	})
}

// Stop halts the sweeper. Idempotent; safe to call without Start.
func (s *stockAppImpl) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
			<-s.done
		}
		logger.Info("stock engine stopped")
	})
}

func (s *stockAppImpl) sweepInterval() time.Duration {
	if s.config != nil && s.config.Stock.SweepInterval > 0 {
		return s.config.Stock.SweepInterval
	}
	return constant.DefaultSweepInterval
}

func (s *stockAppImpl) defaultTTL() time.Duration {
	if s.config != nil && s.config.Stock.DefaultReservationTTL > 0 {
		return s.config.Stock.DefaultReservationTTL
	}
	return constant.DefaultReservationTTL
}

func (s *stockAppImpl) sweepLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepExpired(ctx)
		}
	}
}

// SweepExpired releases every lapsed reservation and emits one
// reservationExpired event per reclaimed row. Returns the number released.
func (s *stockAppImpl) SweepExpired(ctx context.Context) int {
	expired := s.ledgerRepo.ReleaseExpired(time.Now().UTC())
	for _, ex := range expired {
		metrics.ReservationsReleased.WithLabelValues("expired").Inc()
		logger.Info("[SweepExpired] reservation expired",
			zap.String("reservation_id", ex.Reservation.ID),
			zap.Uint64("product_id", ex.Reservation.ProductID),
			zap.Int64("quantity", ex.Reservation.Quantity),
		)
		s.writeSnapshot(ctx, &ex.NewStock)
		s.bus.Publish(events.ReservationExpiredEvent{
			ReservationID: ex.Reservation.ID,
			ProductID:     ex.Reservation.ProductID,
			Quantity:      ex.Reservation.Quantity,
			ReservedBy:    ex.Reservation.ReservedBy,
			NewStock:      ex.NewStock,
			OccurredAt:    time.Now().UTC(),
		})
	}
	return len(expired)
}

func (s *stockAppImpl) ReserveStock(ctx context.Context, req *model.ReserveStockRequest) *model.ReserveStockResult {
	fail := func(op string, errType constant.ErrorType) *model.ReserveStockResult {
		metrics.OperationFailures.WithLabelValues("reserve", constant.ErrorTypeCode[errType]).Inc()
		logger.Info("[ReserveStock] "+op,
			zap.Uint64("product_id", req.ProductID),
			zap.Int64("quantity", req.Quantity),
		)
		return &model.ReserveStockResult{
			Success:   false,
			Error:     constant.ErrorTypeMessage[errType],
			ErrorType: errType,
		}
	}

	if req.Quantity <= 0 {
		return fail("invalid quantity", constant.ErrInvalidQuantity)
	}
	reservationType := req.ReservationType
	if reservationType == "" {
		reservationType = constant.ReservationTypeCart
	}
	if !constant.ValidReservationTypes[reservationType] {
		return fail("invalid reservation type", constant.ErrInvalidRequest)
	}

	ttl := s.defaultTTL()
	if req.ExpirationMinutes > 0 {
		ttl = time.Duration(req.ExpirationMinutes * float64(time.Minute))
	}

	reservation, stock, err := s.ledgerRepo.Reserve(req.ProductID, req.Quantity, req.ReservedBy, reservationType, ttl)
	if err != nil {
		return fail("reserve failed: "+err.Error(), errorTypeOf(err))
	}

	metrics.ReservationsCreated.Inc()
	s.writeSnapshot(ctx, stock)

	// Schedule the broker-side expiration fallback
	if s.publisher != nil {
		msg := rabbitmq.ReservationExpirationMessage{
			ReservationID: reservation.ID,
			ProductID:     reservation.ProductID,
			Quantity:      reservation.Quantity,
			ExpiresAt:     reservation.ExpiresAt,
		}
		if err := s.publisher.PublishReservationExpiration(msg); err != nil {
			logger.Error("[ReserveStock] publish expiration", zap.String("error", err.Error()))
		}
	}

	s.bus.Publish(events.StockReservedEvent{
		ReservationID: reservation.ID,
		ProductID:     reservation.ProductID,
		Quantity:      reservation.Quantity,
		ReservedBy:    reservation.ReservedBy,
		ExpiresAt:     reservation.ExpiresAt,
		NewStock:      *stock,
		OccurredAt:    time.Now().UTC(),
	})

	return &model.ReserveStockResult{
		Success:       true,
		ReservationID: reservation.ID,
		ExpiresAt:     reservation.ExpiresAt,
	}
}

func (s *stockAppImpl) ReleaseReservation(ctx context.Context, reservationID string) *model.ReleaseReservationResult {
	reservation, stock, err := s.ledgerRepo.Release(reservationID)
	if err != nil {
		errType := errorTypeOf(err)
		metrics.OperationFailures.WithLabelValues("release", constant.ErrorTypeCode[errType]).Inc()
		logger.Info("[ReleaseReservation] release failed",
			zap.String("reservation_id", reservationID),
			zap.String("error", err.Error()),
		)
		return &model.ReleaseReservationResult{
			Success:   false,
			Error:     constant.ErrorTypeMessage[errType],
			ErrorType: errType,
		}
	}

	metrics.ReservationsReleased.WithLabelValues("released").Inc()
	s.writeSnapshot(ctx, stock)
	s.bus.Publish(events.StockReleasedEvent{
		ReservationID: reservation.ID,
		ProductID:     reservation.ProductID,
		Quantity:      reservation.Quantity,
		ReservedBy:    reservation.ReservedBy,
		NewStock:      *stock,
		OccurredAt:    time.Now().UTC(),
	})

	return &model.ReleaseReservationResult{Success: true}
}

func (s *stockAppImpl) ProcessSale(ctx context.Context, req *model.SaleRequest) *model.StockMutationResult {
	fail := func(op string, errType constant.ErrorType) *model.StockMutationResult {
		metrics.OperationFailures.WithLabelValues("sale", constant.ErrorTypeCode[errType]).Inc()
		logger.Info("[ProcessSale] "+op,
			zap.Uint64("product_id", req.ProductID),
			zap.Int64("quantity", req.Quantity),
			zap.String("order_id", req.OrderID),
		)
		return &model.StockMutationResult{
			Success:   false,
			Error:     constant.ErrorTypeMessage[errType],
			ErrorType: errType,
		}
	}

	if req.Quantity <= 0 {
		return fail("invalid quantity", constant.ErrInvalidQuantity)
	}
	if req.OrderID == "" {
		return fail("missing order id", constant.ErrInvalidRequest)
	}

	var (
		stock *model.StockLedgerEntry
		err   error
	)
	if req.ReservationID != "" {
		// reservation-backed sale converts locked quantity
		stock, err = s.ledgerRepo.CommitSale(req.ReservationID, req.ProductID, req.Quantity)
	} else {
		stock, err = s.ledgerRepo.DirectSale(req.ProductID, req.Quantity)
	}
	if err != nil {
		return fail("commit failed: "+err.Error(), errorTypeOf(err))
	}

	now := time.Now().UTC()
	ev := model.SaleEvent{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		OrderID:     req.OrderID,
		Timestamp:   now,
		UnitPrice:   req.UnitPrice,
		TotalAmount: req.UnitPrice * float64(req.Quantity),
		CustomerID:  req.CustomerID,
	}
	s.ledgerRepo.AppendSale(ev)

	metrics.SalesCommitted.Inc()
	if req.ReservationID != "" {
		metrics.ReservationsReleased.WithLabelValues("consumed").Inc()
	}

	s.persistSale(ctx, &ev)
	s.writeSnapshot(ctx, stock)
	s.publishStockUpdate(constant.StockUpdateTypeSale, req.Quantity, req.OrderID, stock)

	s.bus.Publish(events.StockUpdatedEvent{
		ProductID:  req.ProductID,
		UpdateType: constant.StockUpdateTypeSale,
		Quantity:   req.Quantity,
		OrderID:    req.OrderID,
		NewStock:   *stock,
		OccurredAt: now,
	})

	return &model.StockMutationResult{Success: true, NewStock: stock}
}

func (s *stockAppImpl) ProcessReturn(ctx context.Context, req *model.ReturnRequest) *model.StockMutationResult {
	fail := func(op string, errType constant.ErrorType) *model.StockMutationResult {
		metrics.OperationFailures.WithLabelValues("return", constant.ErrorTypeCode[errType]).Inc()
		logger.Info("[ProcessReturn] "+op,
			zap.Uint64("product_id", req.ProductID),
			zap.Int64("quantity", req.Quantity),
		)
		return &model.StockMutationResult{
			Success:   false,
			Error:     constant.ErrorTypeMessage[errType],
			ErrorType: errType,
		}
	}

	if req.Quantity <= 0 {
		return fail("invalid quantity", constant.ErrInvalidQuantity)
	}
	if req.OrderID == "" {
		return fail("missing order id", constant.ErrInvalidRequest)
	}

	stock, err := s.ledgerRepo.Return(req.ProductID, req.Quantity)
	if err != nil {
		return fail("return failed: "+err.Error(), errorTypeOf(err))
	}

	now := time.Now().UTC()
	metrics.ReturnsProcessed.Inc()

	s.persistReturn(ctx, &model.ReturnEvent{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		OrderID:   req.OrderID,
		Reason:    req.Reason,
		Timestamp: now,
	})
	s.writeSnapshot(ctx, stock)
	s.publishStockUpdate(constant.StockUpdateTypeReturn, req.Quantity, req.OrderID, stock)

	s.bus.Publish(events.StockUpdatedEvent{
		ProductID:  req.ProductID,
		UpdateType: constant.StockUpdateTypeReturn,
		Quantity:   req.Quantity,
		OrderID:    req.OrderID,
		NewStock:   *stock,
		OccurredAt: now,
	})

	return &model.StockMutationResult{Success: true, NewStock: stock}
}

// SetStock overrides the physical quantity of a product (admin stock
// panel). It fails when the new total is below the currently locked
// quantity.
func (s *stockAppImpl) SetStock(ctx context.Context, req *model.SetStockRequest) *model.StockMutationResult {
	stock, err := s.ledgerRepo.SetStock(req.ProductID, req.TotalStock)
	if err != nil {
		errType := errorTypeOf(err)
		metrics.OperationFailures.WithLabelValues("set_stock", constant.ErrorTypeCode[errType]).Inc()
		return &model.StockMutationResult{
			Success:   false,
			Error:     constant.ErrorTypeMessage[errType],
			ErrorType: errType,
		}
	}

	s.writeSnapshot(ctx, stock)
	return &model.StockMutationResult{Success: true, NewStock: stock}
}

func (s *stockAppImpl) GetStockInfo(ctx context.Context, productID uint64) *model.StockLedgerEntry {
	return s.ledgerRepo.GetStockInfo(productID)
}

func (s *stockAppImpl) GetAllStockLocks(ctx context.Context) map[uint64]model.StockLedgerEntry {
	return s.ledgerRepo.GetAllStockLocks()
}

func (s *stockAppImpl) GetProductReservations(ctx context.Context, productID uint64) []model.Reservation {
	return s.ledgerRepo.GetProductReservations(productID)
}

func (s *stockAppImpl) GetSalesLog(ctx context.Context, productID uint64, limit int) []model.SaleEvent {
	return s.ledgerRepo.ListSales(productID, limit)
}

// persistSale writes the audit row and the durable stock delta. Failures
// are logged only; the in-memory ledger is authoritative.
func (s *stockAppImpl) persistSale(ctx context.Context, ev *model.SaleEvent) {
	if s.txRepo == nil || s.salesRepo == nil {
		return
	}

	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("[ProcessSale] begin tx", zap.String("error", err.Error()))
		return
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	if err := s.salesRepo.InsertSaleTx(ctx, tx, ev); err != nil {
		logger.Error("[ProcessSale] insert sale event", zap.String("error", err.Error()))
		return
	}
	if err := s.salesRepo.ApplyStockDeltaTx(ctx, tx, ev.ProductID, -ev.Quantity); err != nil {
		logger.Error("[ProcessSale] apply stock delta", zap.String("error", err.Error()))
		return
	}
	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.Error("[ProcessSale] commit tx", zap.String("error", err.Error()))
		return
	}
	committed = true
}

func (s *stockAppImpl) persistReturn(ctx context.Context, ev *model.ReturnEvent) {
	if s.txRepo == nil || s.salesRepo == nil {
		return
	}

	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("[ProcessReturn] begin tx", zap.String("error", err.Error()))
		return
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	if err := s.salesRepo.InsertReturnTx(ctx, tx, ev); err != nil {
		logger.Error("[ProcessReturn] insert return event", zap.String("error", err.Error()))
		return
	}
	if err := s.salesRepo.ApplyStockDeltaTx(ctx, tx, ev.ProductID, ev.Quantity); err != nil {
		logger.Error("[ProcessReturn] apply stock delta", zap.String("error", err.Error()))
		return
	}
	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.Error("[ProcessReturn] commit tx", zap.String("error", err.Error()))
		return
	}
	committed = true
}

func (s *stockAppImpl) writeSnapshot(ctx context.Context, entry *model.StockLedgerEntry) {
	if s.snapshotRepo == nil || entry == nil {
		return
	}
	if err := s.snapshotRepo.SetSnapshot(ctx, entry); err != nil {
		logger.Warn("[StockApp] snapshot write",
			zap.Uint64("product_id", entry.ProductID),
			zap.String("error", err.Error()),
		)
	}
}

func (s *stockAppImpl) publishStockUpdate(updateType constant.StockUpdateType, quantity int64, orderID string, stock *model.StockLedgerEntry) {
	if s.publisher == nil || stock == nil {
		return
	}
	msg := rabbitmq.StockUpdateMessage{
		ProductID:         stock.ProductID,
		UpdateType:        string(updateType),
		Quantity:          quantity,
		OrderID:           orderID,
		TotalStock:        stock.TotalStock,
		AvailableQuantity: stock.AvailableQuantity,
		OccurredAt:        time.Now().UTC(),
	}
	if err := s.publisher.PublishStockUpdate(msg); err != nil {
		logger.Error("[StockApp] publish stock update", zap.String("error", err.Error()))
	}
}

func errorTypeOf(err error) constant.ErrorType {
	var ce errors.CustomError
	if goerrors.As(err, &ce) {
		return ce.ErrorType()
	}
	return constant.ErrInternal
}
