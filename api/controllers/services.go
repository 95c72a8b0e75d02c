package controllers

import (
	"context"

	"github.com/angelmondragon/tableorder/internal/cart"
	"github.com/angelmondragon/tableorder/internal/history"
	"github.com/angelmondragon/tableorder/internal/orders"
	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

// MenuService is the catalog lookup behind the menu routes.
type MenuService interface {
	Search(ctx context.Context, query string) ([]orderapi.Category, error)
	Get(ctx context.Context, id string) (*orderapi.MenuItem, error)
}

// CartStore is the table cart.
type CartStore interface {
	Increment(item cart.Item, delta int)
	Decrement(itemID string, delta int)
	SetQuantity(itemID string, quantity int)
	Remove(itemID string)
	QuantityOf(itemID string) int
	Snapshot() cart.Snapshot
}

// OrderLifecycle drives checkout and payment tracking.
type OrderLifecycle interface {
	Submit(ctx context.Context, sub orders.Submission) (*orderapi.Order, error)
	BeginTracking(ctx context.Context, orderID string) (orders.View, error)
	Pay(ctx context.Context, confirmed bool) (orders.View, error)
	Cancel(ctx context.Context, confirmed bool) (orders.View, error)
	Reset()
	View() orders.View
}

// HistoryReader lists this session's unpaid orders after checking the server.
type HistoryReader interface {
	Reconcile(ctx context.Context, fetcher history.Fetcher) []history.Entry
}

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
