package services

import (
	"context"

	"bookmarket/internal/domain"
	"bookmarket/internal/repos"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type ReportService struct {
	DB *sqlx.DB
}

func NewReportService(db *sqlx.DB) *ReportService { return &ReportService{DB: db} }

type BooksBreakdown struct {
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
}

type Report struct {
	ActiveUsers int            `json:"active_users"`
	TotalBooks  int            `json:"total_books"`
	Books       BooksBreakdown `json:"books_breakdown"`
}

// Summary gathers the admin dashboard counts.
func (s *ReportService) Summary(ctx context.Context, actor domain.Principal) (Report, error) {
	if err := requireAdmin(actor); err != nil {
		return Report{}, err
	}
	r := repos.NewReportRepo(s.DB)
	var out Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.ActiveUsers, err = r.ActiveUsers(gctx); return })
	g.Go(func() (err error) { out.TotalBooks, err = r.TotalBooks(gctx); return })
	g.Go(func() (err error) { out.Books.Approved, err = r.ApprovedBooks(gctx); return })
	g.Go(func() (err error) { out.Books.Pending, err = r.PendingBooks(gctx); return })
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return out, nil
}
