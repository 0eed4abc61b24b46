package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type ReportRepo struct{ db sqlx.ExtContext }

func NewReportRepo(db sqlx.ExtContext) *ReportRepo { return &ReportRepo{db: db} }

func (r *ReportRepo) count(ctx context.Context, q string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, q)
	return n, err
}

func (r *ReportRepo) ActiveUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE is_active = 1`)
}

func (r *ReportRepo) TotalBooks(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM books`)
}

func (r *ReportRepo) ApprovedBooks(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM books WHERE is_approved = 1`)
}

// PendingBooks counts books still awaiting approval.
func (r *ReportRepo) PendingBooks(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM books WHERE is_approved = 0`)
}
