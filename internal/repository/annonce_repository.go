package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ptitsvieux/backend/internal/model"
)

// AnnonceRepo encapsulates all database queries related to annonces.
type AnnonceRepo struct {
	db *sql.DB
}

func NewAnnonceRepo(db *sql.DB) *AnnonceRepo {
	return &AnnonceRepo{db: db}
}

const annonceColumns = "id, user_id, title, description, price, COALESCE(location, ''), COALESCE(photo, ''), is_valide, published_at"

func scanAnnonce(row interface{ Scan(...any) error }) (model.Annonce, error) {
	var a model.Annonce
	err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Price, &a.Location, &a.Photo, &a.IsValide, &a.PublishedAt)
	return a, err
}

// Create inserts a new annonce, always unvalidated, and fills ID and
// PublishedAt.
func (r *AnnonceRepo) Create(ctx context.Context, a *model.Annonce) error {
	a.IsValide = false
	a.PublishedAt = now()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO annonces (user_id, title, description, price, location, photo, is_valide, published_at) VALUES (?,?,?,?,?,?,?,?)",
		a.UserID, a.Title, a.Description, a.Price, nullable(a.Location), nullable(a.Photo), false, a.PublishedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches an annonce regardless of owner.
func (r *AnnonceRepo) GetByID(ctx context.Context, id uint64) (model.Annonce, error) {
	a, err := scanAnnonce(r.db.QueryRowContext(ctx,
		"SELECT "+annonceColumns+" FROM annonces WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrAnnonceNotFound
	}
	return a, err
}

// Search lists annonces newest first.  A non-empty term filters on title,
// description and location, case-insensitively.
func (r *AnnonceRepo) Search(ctx context.Context, term string) ([]model.Annonce, error) {
	q := "SELECT " + annonceColumns + " FROM annonces"
	var args []any
	if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
		like := "%" + escapeLike(term) + "%"
		q += ` WHERE LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(COALESCE(location, '')) LIKE ? ESCAPE '!'`
		args = append(args, like, like, like)
	}
	q += " ORDER BY published_at DESC, id DESC"
	return r.list(ctx, q, args...)
}

// ListByUser returns the annonces of one owner, newest first.
func (r *AnnonceRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Annonce, error) {
	return r.list(ctx, "SELECT "+annonceColumns+" FROM annonces WHERE user_id = ? ORDER BY published_at DESC, id DESC", userID)
}

func (r *AnnonceRepo) list(ctx context.Context, q string, args ...any) ([]model.Annonce, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Annonce{}
	for rows.Next() {
		a, err := scanAnnonce(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update applies patch to an annonce owned by ownerID.  Missing annonces
// and annonces of other owners both yield ErrAnnonceNotFound.
func (r *AnnonceRepo) Update(ctx context.Context, id, ownerID uint64, p model.AnnoncePatch) (model.Annonce, error) {
	var sets []string
	var args []any
	if p.Title != nil {
		sets, args = append(sets, "title = ?"), append(args, *p.Title)
	}
	if p.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *p.Description)
	}
	if p.Price != nil {
		sets, args = append(sets, "price = ?"), append(args, *p.Price)
	}
	if p.Location != nil {
		sets, args = append(sets, "location = ?"), append(args, nullable(*p.Location))
	}
	if p.Photo != nil {
		sets, args = append(sets, "photo = ?"), append(args, nullable(*p.Photo))
	}
	if len(sets) > 0 {
		args = append(args, id, ownerID)
		res, err := r.db.ExecContext(ctx,
			"UPDATE annonces SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?", args...)
		if err != nil {
			return model.Annonce{}, err
		}
		if err := expectRow(res, ErrAnnonceNotFound); err != nil {
			return model.Annonce{}, err
		}
	}
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return a, err
	}
	if a.UserID != ownerID {
		return model.Annonce{}, ErrAnnonceNotFound
	}
	return a, nil
}

// Delete removes an annonce.  When ownerID is non-zero only that owner's
// annonce matches; admins pass zero.
func (r *AnnonceRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	q, args := "DELETE FROM annonces WHERE id = ?", []any{id}
	if ownerID != 0 {
		q, args = q+" AND user_id = ?", append(args, ownerID)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	return expectRow(res, ErrAnnonceNotFound)
}

// MarkValidated flips is_valide to true in a single conditional statement so
// that of two concurrent callers exactly one observes the transition.  It
// reports whether this call performed it.  A false result with a nil error
// means the row did not match: missing, other owner, or already validated.
func (r *AnnonceRepo) MarkValidated(ctx context.Context, id, ownerID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE annonces SET is_valide = ? WHERE id = ? AND user_id = ? AND is_valide = ?",
		true, id, ownerID, false)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// escapeLike neutralizes LIKE wildcards in user input; '!' is the escape
// character declared in the queries.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
