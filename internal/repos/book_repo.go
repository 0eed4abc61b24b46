package repos

import (
	"context"
	"fmt"
	"strings"

	"bookmarket/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type BookRepo struct{ db sqlx.ExtContext }

func NewBookRepo(db sqlx.ExtContext) *BookRepo { return &BookRepo{db: db} }

const bookSelect = `
  SELECT
    b.id, b.title, b.author, b.category_id, c.name AS category_name, b.price, b.condition,
    b.description, b.image, b.seller_id, u.username AS seller_name,
    NULLIF(u.phone_number,'') AS seller_contact, b.is_approved, b.status, b.created_at
  FROM books b
  JOIN users u ON u.id = b.seller_id
  LEFT JOIN categories c ON c.id = b.category_id`

func (r *BookRepo) Get(ctx context.Context, id string) (domain.Book, error) {
	var b domain.Book
	if err := sqlx.GetContext(ctx, r.db, &b, bookSelect+` WHERE b.id = ?`, id); err != nil {
		return b, notFound(err, "book")
	}
	return b, nil
}

// BookFilter narrows a book listing. Zero values mean "any".
type BookFilter struct {
	VisibleOnly bool
	Search      string
	CategoryID  string
	Condition   domain.Condition
	Status      domain.BookStatus
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	// Ordering is one of price, -price, title, -title; anything else means newest first.
	Ordering string
}

var bookOrderings = map[string]string{
	"price":  "CAST(b.price AS REAL) ASC",
	"-price": "CAST(b.price AS REAL) DESC",
	"title":  "b.title COLLATE NOCASE ASC",
	"-title": "b.title COLLATE NOCASE DESC",
}

// List returns books matching f. VisibleOnly hides unapproved and pending books.
func (r *BookRepo) List(ctx context.Context, f BookFilter) ([]domain.Book, error) {
	var (
		where []string
		args  []any
	)
	if f.VisibleOnly {
		where = append(where, `b.is_approved = 1 AND b.status <> 'pending'`)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where = append(where, `(LOWER(b.title) LIKE ? OR LOWER(b.author) LIKE ?)`)
		args = append(args, like, like)
	}
	if f.CategoryID != "" {
		where = append(where, `b.category_id = ?`)
		args = append(args, f.CategoryID)
	}
	if f.Condition != "" {
		where = append(where, `b.condition = ?`)
		args = append(args, f.Condition)
	}
	if f.Status != "" {
		where = append(where, `b.status = ?`)
		args = append(args, f.Status)
	}
	if f.MinPrice != nil {
		where = append(where, `CAST(b.price AS REAL) >= ?`)
		args = append(args, f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		where = append(where, `CAST(b.price AS REAL) <= ?`)
		args = append(args, f.MaxPrice.InexactFloat64())
	}

	q := bookSelect
	if len(where) > 0 {
		q += "\n  WHERE " + strings.Join(where, " AND ")
	}
	order, ok := bookOrderings[f.Ordering]
	if !ok {
		order = "b.created_at DESC, b.rowid DESC"
	}
	q += "\n  ORDER BY " + order

	out := []domain.Book{}
	if err := sqlx.SelectContext(ctx, r.db, &out, q, args...); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

func (r *BookRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.Book, error) {
	out := []domain.Book{}
	err := sqlx.SelectContext(ctx, r.db, &out, bookSelect+`
  WHERE b.seller_id = ?
  ORDER BY b.created_at DESC, b.rowid DESC`, sellerID)
	return out, err
}

func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO books
	    (id, title, author, category_id, price, condition, description, image, seller_id, is_approved, status, created_at)
	  VALUES
	    (?,  ?,     ?,      ?,           ?,     ?,         ?,           ?,     ?,         ?,           ?,      ?)
	`, b.ID, b.Title, b.Author, b.CategoryID, b.Price, b.Condition, b.Description, b.Image, b.SellerID, b.IsApproved, b.Status, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// Save persists every mutable column of an existing book.
func (r *BookRepo) Save(ctx context.Context, b *domain.Book) error {
	res, err := r.db.ExecContext(ctx, `
	  UPDATE books
	  SET title=?, author=?, category_id=?, price=?, condition=?, description=?, image=?, is_approved=?, status=?
	  WHERE id=?
	`, b.Title, b.Author, b.CategoryID, b.Price, b.Condition, b.Description, b.Image, b.IsApproved, b.Status, b.ID)
	return affected(res, err, "book")
}

// MarkSold flips the book to sold only if nobody else did first.
// It returns false when the book was already sold.
func (r *BookRepo) MarkSold(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE books SET status='sold' WHERE id=? AND status<>'sold'`, id)
	if err != nil {
		return false, fmt.Errorf("mark sold: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes the book with its orders, their transactions and favorites. Run it inside a transaction.
func (r *BookRepo) Delete(ctx context.Context, id string) error {
	stmts := []string{
		`DELETE FROM transactions WHERE order_id IN (SELECT id FROM orders WHERE book_id=?)`,
		`DELETE FROM orders WHERE book_id=?`,
		`DELETE FROM favorites WHERE book_id=?`,
	}
	for _, q := range stmts {
		if _, err := r.db.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete book data: %w", err)
		}
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=?`, id)
	return affected(res, err, "book")
}
