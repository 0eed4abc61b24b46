package repos

import (
	"context"
	"database/sql"
	"fmt"

	"bookmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT id, name FROM categories ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	if err := sqlx.GetContext(ctx, r.db, &c, `SELECT id, name FROM categories WHERE id=?`, id); err != nil {
		return c, notFound(err, "category")
	}
	return c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO categories(id,name) VALUES(?,?)`, c.ID, c.Name); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name=? WHERE id=?`, name, id)
	return affected(res, err, "category")
}

// Delete detaches referencing books before removing the category. Run it inside a transaction.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE books SET category_id=NULL WHERE category_id=?`, id); err != nil {
		return fmt.Errorf("detach books: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id=?`, id)
	return affected(res, err, "category")
}

func affected(res sql.Result, err error, entity string) error {
	if err != nil {
		return fmt.Errorf("write %s: %w", entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(entity)
	}
	return nil
}
