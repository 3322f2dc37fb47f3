// Package realtime broadcasts table-change notifications over NATS.
//
// Events carry no payload ordering guarantee. Subscribers treat every event
// as an invalidation hint and re-fetch the affected table; the fetched state
// is authoritative.
package realtime

import "context"

// Tables that emit change notifications.
const (
	TableProducts   = "products"
	TablePromotions = "promotions"
	TableBanners    = "banners"
	TableEvents     = "events"
	TableOrders     = "orders"
	TableSettings   = "store_settings"
)

// Change operations.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Change describes a single row-level change on a watched table.
type Change struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
}

// Publisher emits change notifications.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Subscriber delivers change notifications for a table to a handler.
// The handler runs on the subscription goroutine and must not block.
type Subscriber interface {
	Subscribe(table string, handler func(Change)) (func(), error)
}

// NoopPublisher discards all changes. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Change) error { return nil }
