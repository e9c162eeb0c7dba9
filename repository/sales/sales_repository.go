package sales

import (
	"context"

	"github.com/Pinto1232/pos-system-sub004/model"
	"github.com/jmoiron/sqlx"
)

// SalesRepository persists the audit trail of committed sales and returns
// and keeps the product table's physical stock column in sync, so the
// ledger can be re-seeded after a restart.
type SalesRepository interface {
	InsertSaleTx(ctx context.Context, tx *sqlx.Tx, ev *model.SaleEvent) error
	InsertReturnTx(ctx context.Context, tx *sqlx.Tx, ev *model.ReturnEvent) error
	ApplyStockDeltaTx(ctx context.Context, tx *sqlx.Tx, productID uint64, delta int64) error
}

type SQL struct {
	conn *sqlx.DB
}

func NewSalesRepository(conn *sqlx.DB) SalesRepository {
	return &SQL{conn: conn}
}

func (r *SQL) InsertSaleTx(ctx context.Context, tx *sqlx.Tx, ev *model.SaleEvent) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO stock_sale_event (product_id, quantity, order_id, unit_price, total_amount, customer_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		ev.ProductID, ev.Quantity, ev.OrderID, ev.UnitPrice, ev.TotalAmount, ev.CustomerID, ev.Timestamp,
	)
	return err
}

func (r *SQL) InsertReturnTx(ctx context.Context, tx *sqlx.Tx, ev *model.ReturnEvent) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO stock_return_event (product_id, quantity, order_id, reason, created_at) VALUES (?, ?, ?, ?, ?)",
		ev.ProductID, ev.Quantity, ev.OrderID, ev.Reason, ev.Timestamp,
	)
	return err
}

// ApplyStockDeltaTx adjusts the durable stock column. Negative delta for a
// sale, positive for a return.
func (r *SQL) ApplyStockDeltaTx(ctx context.Context, tx *sqlx.Tx, productID uint64, delta int64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE product SET stock = stock + ? WHERE id = ?",
		delta, productID,
	)
	return err
}
