package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ptitsvieux/backend/internal/model"
)

// NoteRepo stores ratings.  The upsert statement differs between MySQL and
// SQLite, so the repo remembers which driver it talks to.
type NoteRepo struct {
	db     *sql.DB
	driver string
}

func NewNoteRepo(db *sql.DB, driver string) *NoteRepo {
	return &NoteRepo{db: db, driver: driver}
}

// Upsert inserts the note of (AuthorID, RatedID) or overwrites its stars,
// comment and timestamp.  The stored row is returned.
func (r *NoteRepo) Upsert(ctx context.Context, n model.Note) (model.Note, error) {
	q := `INSERT INTO notes (author_id, rated_id, stars, comment, created_at) VALUES (?,?,?,?,?)
		ON CONFLICT (author_id, rated_id) DO UPDATE
		SET stars = excluded.stars, comment = excluded.comment, created_at = excluded.created_at`
	if r.driver == "mysql" {
		q = `INSERT INTO notes (author_id, rated_id, stars, comment, created_at) VALUES (?,?,?,?,?)
		ON DUPLICATE KEY UPDATE stars = VALUES(stars), comment = VALUES(comment), created_at = VALUES(created_at)`
	}
	if _, err := r.db.ExecContext(ctx, q, n.AuthorID, n.RatedID, n.Stars, nullable(n.Comment), now()); err != nil {
		return model.Note{}, err
	}
	stored, err := r.Get(ctx, n.AuthorID, n.RatedID)
	if err != nil {
		return model.Note{}, err
	}
	return *stored, nil
}

// Get returns the note author gave rated, or nil when there is none.
func (r *NoteRepo) Get(ctx context.Context, authorID, ratedID uint64) (*model.Note, error) {
	var n model.Note
	err := r.db.QueryRowContext(ctx, `
		SELECT id, author_id, rated_id, stars, COALESCE(comment, ''), created_at
		FROM notes WHERE author_id = ? AND rated_id = ?`, authorID, ratedID).
		Scan(&n.ID, &n.AuthorID, &n.RatedID, &n.Stars, &n.Comment, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Summary returns the average and count of ratedID's notes.  The average is
// 0 when there are none.
func (r *NoteRepo) Summary(ctx context.Context, ratedID uint64) (model.NoteSummary, error) {
	var (
		s   model.NoteSummary
		avg sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT AVG(stars), COUNT(*) FROM notes WHERE rated_id = ?", ratedID).Scan(&avg, &s.Count)
	if err != nil {
		return s, err
	}
	if avg.Valid {
		s.Average = avg.Float64
	}
	return s, nil
}

// Comments lists ratedID's notes newest first with their author's name.
func (r *NoteRepo) Comments(ctx context.Context, ratedID uint64) ([]model.NoteComment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT n.stars, COALESCE(n.comment, ''), u.name, n.created_at
		FROM notes n
		JOIN users u ON u.id = n.author_id
		WHERE n.rated_id = ?
		ORDER BY n.created_at DESC, n.id DESC`, ratedID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.NoteComment{}
	for rows.Next() {
		var c model.NoteComment
		if err := rows.Scan(&c.Stars, &c.Comment, &c.AuthorName, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
