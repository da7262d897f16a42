package repository

import (
	"context"
	"database/sql"

	"github.com/ptitsvieux/backend/internal/model"
)

// MessageRepo persists direct messages and derives conversations from them.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts m with a server-side timestamp and fills ID and CreatedAt.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	m.CreatedAt = now()
	var annonce sql.NullInt64
	if m.AnnonceID != nil {
		annonce = sql.NullInt64{Int64: int64(*m.AnnonceID), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (sender_id, recipient_id, annonce_id, content, created_at) VALUES (?,?,?,?,?)",
		m.SenderID, m.RecipientID, annonce, m.Content, m.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Thread returns every message exchanged between a and b in creation
// order.  Ties on the timestamp fall back to insertion order.
func (r *MessageRepo) Thread(ctx context.Context, a, b uint64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, annonce_id, content, created_at
		FROM messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY created_at ASC, id ASC`, a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Message{}
	for rows.Next() {
		var (
			m       model.Message
			annonce sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &annonce, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		if annonce.Valid {
			id := uint64(annonce.Int64)
			m.AnnonceID = &id
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Exchanged reports whether at least one message went between a and b in
// either direction.
func (r *MessageRepo) Exchanged(ctx context.Context, a, b uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM messages
			WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
			LIMIT 1
		) t`, a, b, b, a).Scan(&n)
	return n > 0, err
}

// Conversations lists the distinct counterparts of userID, most recent
// exchange first, with the last message of each exchange.
func (r *MessageRepo) Conversations(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.other_id, u.name, lm.content, lm.created_at
		FROM (
			SELECT CASE WHEN sender_id = ? THEN recipient_id ELSE sender_id END AS other_id,
			       MAX(id) AS last_id
			FROM messages
			WHERE sender_id = ? OR recipient_id = ?
			GROUP BY other_id
		) t
		JOIN messages lm ON lm.id = t.last_id
		JOIN users u ON u.id = t.other_id
		ORDER BY t.last_id DESC`, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Conversation{}
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.CounterpartID, &c.CounterpartName, &c.LastMessage, &c.LastAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
