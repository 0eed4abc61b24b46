package repos

import (
	"context"
	"fmt"

	"bookmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

type FavoriteRepo struct{ db sqlx.ExtContext }

func NewFavoriteRepo(db sqlx.ExtContext) *FavoriteRepo { return &FavoriteRepo{db: db} }

const favoriteCols = `id, user_id, book_id, created_at`

// Add inserts the pair; a duplicate surfaces as a unique violation.
func (r *FavoriteRepo) Add(ctx context.Context, f *domain.Favorite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites(id, user_id, book_id, created_at) VALUES(?, ?, ?, ?)
	`, f.ID, f.UserID, f.BookID, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepo) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM favorites WHERE user_id = ? AND book_id = ?`, userID, bookID)
	return n > 0, err
}

func (r *FavoriteRepo) Get(ctx context.Context, id string) (domain.Favorite, error) {
	var f domain.Favorite
	if err := sqlx.GetContext(ctx, r.db, &f, `SELECT `+favoriteCols+` FROM favorites WHERE id = ?`, id); err != nil {
		return f, notFound(err, "favorite")
	}
	return f, nil
}

func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	out := []domain.Favorite{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+favoriteCols+` FROM favorites
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
	return out, err
}

func (r *FavoriteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	return affected(res, err, "favorite")
}
