package repos

import (
	"context"
	"fmt"
	"time"

	"bookmarket/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

// ---------- History / invoice rows ----------

type OrderHistoryRow struct {
	ID        string             `db:"id" json:"id"`
	BookTitle string             `db:"book_title" json:"book_title"`
	Price     decimal.Decimal    `db:"price" json:"price"`
	Status    domain.OrderStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}

type InvoiceRow struct {
	ID            string             `db:"id" json:"id"`
	BookTitle     string             `db:"book_title" json:"book_title"`
	BuyerName     string             `db:"buyer_name" json:"buyer_name"`
	TotalPrice    *decimal.Decimal   `db:"total_price" json:"total_price"`
	Status        domain.OrderStatus `db:"status" json:"status"`
	PaymentStatus *string            `db:"payment_status" json:"payment_status"`
	TrackingCode  *string            `db:"tracking_code" json:"tracking_code"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
}

type SaleRow struct {
	OrderID   string             `db:"order_id" json:"order_id"`
	BookTitle string             `db:"book_title" json:"book_title"`
	Price     decimal.Decimal    `db:"price" json:"price"`
	Buyer     string             `db:"buyer" json:"buyer"`
	CreatedAt time.Time          `db:"created_at" json:"purchase_date"`
	Status    domain.OrderStatus `db:"status" json:"status"`
}

const orderCols = `id, book_id, buyer_id, status, created_at`

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO orders(id, book_id, buyer_id, status, created_at)
	  VALUES(?, ?, ?, ?, ?)
	`, o.ID, o.BookID, o.BuyerID, o.Status, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	if err := sqlx.GetContext(ctx, r.db, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		return o, notFound(err, "order")
	}
	return o, nil
}

func (r *OrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	out := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+orderCols+` FROM orders
		ORDER BY created_at DESC, rowid DESC`)
	return out, err
}

func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+orderCols+` FROM orders
		WHERE buyer_id = ?
		ORDER BY created_at DESC, rowid DESC`, buyerID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return affected(res, err, "order")
}

// Delete removes the order and its transaction. Run it inside a transaction.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE order_id = ?`, id); err != nil {
		return fmt.Errorf("delete order transaction: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	return affected(res, err, "order")
}

// Purchases lists orders placed by the buyer, newest first.
func (r *OrderRepo) Purchases(ctx context.Context, buyerID string) ([]OrderHistoryRow, error) {
	out := []OrderHistoryRow{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT o.id, b.title AS book_title, b.price, o.status, o.created_at
		FROM orders o
		JOIN books b ON b.id = o.book_id
		WHERE o.buyer_id = ?
		ORDER BY o.created_at DESC, o.rowid DESC`, buyerID)
	return out, err
}

// Sales lists orders for books the seller owns, newest first.
func (r *OrderRepo) Sales(ctx context.Context, sellerID string) ([]OrderHistoryRow, error) {
	out := []OrderHistoryRow{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT o.id, b.title AS book_title, b.price, o.status, o.created_at
		FROM orders o
		JOIN books b ON b.id = o.book_id
		WHERE b.seller_id = ?
		ORDER BY o.created_at DESC, o.rowid DESC`, sellerID)
	return out, err
}

// Invoices lists the buyer's paid orders enriched with payment details.
func (r *OrderRepo) Invoices(ctx context.Context, buyerID string) ([]InvoiceRow, error) {
	out := []InvoiceRow{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT o.id, b.title AS book_title, u.username AS buyer_name, t.amount AS total_price,
		       o.status, t.status AS payment_status, t.ref_id AS tracking_code, o.created_at
		FROM orders o
		JOIN books b ON b.id = o.book_id
		JOIN users u ON u.id = o.buyer_id
		LEFT JOIN transactions t ON t.order_id = o.id
		WHERE o.buyer_id = ? AND o.status = 'paid'
		ORDER BY o.created_at DESC, o.rowid DESC`, buyerID)
	return out, err
}

// PaidSales lists paid orders for the seller's books.
func (r *OrderRepo) PaidSales(ctx context.Context, sellerID string) ([]SaleRow, error) {
	out := []SaleRow{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT o.id AS order_id, b.title AS book_title, b.price, u.username AS buyer, o.created_at, o.status
		FROM orders o
		JOIN books b ON b.id = o.book_id
		JOIN users u ON u.id = o.buyer_id
		WHERE b.seller_id = ? AND o.status = 'paid'
		ORDER BY o.created_at DESC, o.rowid DESC`, sellerID)
	return out, err
}
