package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/Pinto1232/pos-system-sub004/cmd/redis"
	"github.com/Pinto1232/pos-system-sub004/model"
)

// Repository mirrors ledger snapshots into Redis so sibling processes can
// read near-real-time availability without talking to the engine.
type Repository interface {
	SetSnapshot(ctx context.Context, entry *model.StockLedgerEntry) error
	GetSnapshot(ctx context.Context, productID uint64) (*model.StockLedgerEntry, error)
	DeleteSnapshot(ctx context.Context, productID uint64) error
}

type redisRepo struct {
	ttl time.Duration
}

// NewRepository returns a Redis snapshot repository. Snapshots carry a TTL
// so a stopped engine does not serve stale availability forever; ttl 0
// keeps them until overwritten.
func NewRepository(ttl time.Duration) Repository {
	return &redisRepo{ttl: ttl}
}

func snapshotKey(productID uint64) string {
	return fmt.Sprintf("stock:snapshot:%d", productID)
}

func (r *redisRepo) SetSnapshot(ctx context.Context, entry *model.StockLedgerEntry) error {
	client := redisclient.Get()
	if client == nil || entry == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return client.Set(ctx, snapshotKey(entry.ProductID), payload, r.ttl).Err()
}

func (r *redisRepo) GetSnapshot(ctx context.Context, productID uint64) (*model.StockLedgerEntry, error) {
	client := redisclient.Get()
	if client == nil {
		return nil, nil
	}
	raw, err := client.Get(ctx, snapshotKey(productID)).Bytes()
	if err != nil {
		return nil, err
	}
	var entry model.StockLedgerEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *redisRepo) DeleteSnapshot(ctx context.Context, productID uint64) error {
	client := redisclient.Get()
	if client == nil {
		return nil
	}
	return client.Del(ctx, snapshotKey(productID)).Err()
}
