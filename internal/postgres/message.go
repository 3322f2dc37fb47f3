package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcastillo/botilleria/internal/domain"
)

// MessageRepo persists customer contact messages.
type MessageRepo struct {
	pool *pgxpool.Pool
}

// NewMessageRepo creates a message repository.
func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Create stores a submitted contact message.
func (r *MessageRepo) Create(ctx context.Context, m domain.Message) (*domain.Message, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, name, email, phone, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)`,
		m.ID, m.Name, m.Email, m.Phone, m.Body, m.CreatedAt)
	if err != nil {
		return nil, domain.Internal(err, "message.create", "failed to store message")
	}
	return &m, nil
}

// List returns messages newest first.
func (r *MessageRepo) List(ctx context.Context) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, body, read, created_at
		FROM messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.Internal(err, "message.list", "failed to list messages")
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, domain.Internal(err, "message.list", "failed to scan message")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flags a message as handled.
func (r *MessageRepo) MarkRead(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE messages SET read = true WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "message.mark_read", "failed to mark message read")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// Delete removes a message.
func (r *MessageRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "message.delete", "failed to delete message")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}
