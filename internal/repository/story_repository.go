package repository

import (
	"context"
	"database/sql"

	"github.com/ptitsvieux/backend/internal/model"
)

type StoryRepo struct {
	db *sql.DB
}

func NewStoryRepo(db *sql.DB) *StoryRepo {
	return &StoryRepo{db: db}
}

// Create inserts s and fills ID, CreatedAt and AuthorName.
func (r *StoryRepo) Create(ctx context.Context, s *model.Story) error {
	s.CreatedAt = now()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO stories (user_id, title, content, created_at) VALUES (?,?,?,?)",
		s.UserID, s.Title, s.Content, s.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT name FROM users WHERE id = ?", s.UserID).Scan(&s.AuthorName)
}

// List returns the newest stories first, at most limit of them.
func (r *StoryRepo) List(ctx context.Context, limit int) ([]model.Story, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, u.name, s.title, s.content, s.created_at
		FROM stories s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Story{}
	for rows.Next() {
		var s model.Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.AuthorName, &s.Title, &s.Content, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
