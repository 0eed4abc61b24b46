package repos

import (
	"context"
	"fmt"

	"bookmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

type TransactionRepo struct{ db sqlx.ExtContext }

func NewTransactionRepo(db sqlx.ExtContext) *TransactionRepo { return &TransactionRepo{db: db} }

const txCols = `t.id, t.order_id, t.amount, t.ref_id, t.status, t.created_at`

func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions(id, order_id, amount, ref_id, status, created_at)
		VALUES(?, ?, ?, ?, ?, ?)
	`, t.ID, t.OrderID, t.Amount, t.RefID, t.Status, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (domain.Transaction, error) {
	var t domain.Transaction
	if err := sqlx.GetContext(ctx, r.db, &t, `SELECT `+txCols+` FROM transactions t WHERE t.id = ?`, id); err != nil {
		return t, notFound(err, "transaction")
	}
	return t, nil
}

func (r *TransactionRepo) ByOrder(ctx context.Context, orderID string) (domain.Transaction, error) {
	var t domain.Transaction
	if err := sqlx.GetContext(ctx, r.db, &t, `SELECT `+txCols+` FROM transactions t WHERE t.order_id = ?`, orderID); err != nil {
		return t, notFound(err, "transaction")
	}
	return t, nil
}

func (r *TransactionRepo) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+txCols+` FROM transactions t
		ORDER BY t.created_at DESC, t.rowid DESC`)
	return out, err
}

// ListByBuyer returns transactions of orders placed by the buyer.
func (r *TransactionRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+txCols+` FROM transactions t
		JOIN orders o ON o.id = t.order_id
		WHERE o.buyer_id = ?
		ORDER BY t.created_at DESC, t.rowid DESC`, buyerID)
	return out, err
}

// BuyerOf returns the buyer id of the order the transaction belongs to.
func (r *TransactionRepo) BuyerOf(ctx context.Context, id string) (string, error) {
	var buyer string
	err := sqlx.GetContext(ctx, r.db, &buyer, `
		SELECT o.buyer_id FROM transactions t JOIN orders o ON o.id = t.order_id WHERE t.id = ?`, id)
	if err != nil {
		return "", notFound(err, "transaction")
	}
	return buyer, nil
}

func (r *TransactionRepo) Settle(ctx context.Context, id string, status domain.TxStatus, ref *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET status = ?, ref_id = ? WHERE id = ?`, status, ref, id)
	return affected(res, err, "transaction")
}
