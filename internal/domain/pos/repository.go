package pos

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/xenking/posify/internal/domain/order"
)

// Key names a persisted snapshot.
type Key string

// Snapshot keys. Each is saved independently whenever its part of the
// state changes.
const (
	KeyCart            Key = "pos_cart"
	KeyOrders          Key = "pos_orders"
	KeySettings        Key = "pos_settings"
	KeyCurrentTable    Key = "pos_current_table"
	KeyCurrentCustomer Key = "pos_current_customer"
	KeyOrderType       Key = "pos_order_type"
)

// Keys lists every snapshot key.
func Keys() []Key {
	return []Key{KeyCart, KeyOrders, KeySettings, KeyCurrentTable, KeyCurrentCustomer, KeyOrderType}
}

// ErrNoSnapshot is returned by Repository.Load when nothing is stored under
// the key.
var ErrNoSnapshot = errors.New("no snapshot")

// Repository stores JSON snapshots by key.
type Repository interface {
	Load(ctx context.Context, key Key) ([]byte, error)
	Save(ctx context.Context, key Key, data []byte) error
}

// LoadOrders reads the order snapshot directly from a repository.
func LoadOrders(ctx context.Context, repo Repository) ([]order.Order, error) {
	data, err := repo.Load(ctx, KeyOrders)
	if errors.Is(err, ErrNoSnapshot) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load orders")
	}
	var orders []order.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}
