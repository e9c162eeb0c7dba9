package product

import (
	"context"

	"github.com/Pinto1232/pos-system-sub004/model"
	"github.com/jmoiron/sqlx"
)

type ProductRepository interface {
	GetProductStocks(ctx context.Context) ([]model.ProductStock, error)
	GetProductStock(ctx context.Context, productID uint64) (*model.ProductStock, error)
}

type SQL struct {
	conn *sqlx.DB
}

func NewProductRepository(conn *sqlx.DB) ProductRepository {
	return &SQL{conn: conn}
}

const (
	listProductStocks = `SELECT id as product_id, stock as total_stock FROM product`
	getProductStock   = `SELECT id as product_id, stock as total_stock FROM product WHERE id = ?`
)

// GetProductStocks reads the physical stock of every product. It is used
// once at startup to seed the in-memory ledger.
func (s *SQL) GetProductStocks(ctx context.Context) ([]model.ProductStock, error) {
	rows, err := s.conn.QueryxContext(ctx, listProductStocks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stocks := make([]model.ProductStock, 0)
	for rows.Next() {
		var ps model.ProductStock
		if err := rows.StructScan(&ps); err != nil {
			return nil, err
		}
		stocks = append(stocks, ps)
	}
	return stocks, rows.Err()
}

func (s *SQL) GetProductStock(ctx context.Context, productID uint64) (*model.ProductStock, error) {
	var ps model.ProductStock
	if err := s.conn.QueryRowxContext(ctx, getProductStock, productID).StructScan(&ps); err != nil {
		return nil, err
	}
	return &ps, nil
}
