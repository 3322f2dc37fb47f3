package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is the root of all change subjects. The full subject is
// "botilleria.changes.<table>".
const SubjectPrefix = "botilleria.changes"

// NatsBroker publishes and subscribes to change notifications over NATS.
type NatsBroker struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// Connect dials NATS and returns a broker. The caller owns Close.
func Connect(url string, logger *slog.Logger) (*NatsBroker, error) {
	conn, err := nats.Connect(url,
		nats.Name("botilleria"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NatsBroker{conn: conn, logger: logger}, nil
}

// Close drains the connection, letting in-flight messages finish.
func (b *NatsBroker) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn("nats drain failed", "error", err)
	}
}

func subject(table string) string {
	return SubjectPrefix + "." + table
}

// Publish emits a change notification. Best effort: the broker does not
// guarantee delivery order and subscribers re-fetch on receipt.
func (b *NatsBroker) Publish(_ context.Context, change Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	if err := b.conn.Publish(subject(change.Table), data); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Subscribe registers a handler for one table's changes and returns an
// unsubscribe function. Malformed messages are logged and dropped.
func (b *NatsBroker) Subscribe(table string, handler func(Change)) (func(), error) {
	sub, err := b.conn.Subscribe(subject(table), func(msg *nats.Msg) {
		var change Change
		if err := json.Unmarshal(msg.Data, &change); err != nil {
			b.logger.Warn("dropping malformed change notification",
				"subject", msg.Subject, "error", err)
			return
		}
		handler(change)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject(table), err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}
