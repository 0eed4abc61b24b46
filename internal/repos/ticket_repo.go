package repos

import (
	"context"
	"fmt"

	"bookmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

type TicketRepo struct{ db sqlx.ExtContext }

func NewTicketRepo(db sqlx.ExtContext) *TicketRepo { return &TicketRepo{db: db} }

const ticketSelect = `
	SELECT t.id, t.user_id, u.username, t.subject, t.message, t.admin_reply, t.is_resolved, t.created_at
	FROM support_tickets t
	JOIN users u ON u.id = t.user_id`

func (r *TicketRepo) Create(ctx context.Context, t *domain.SupportTicket) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO support_tickets(id, user_id, subject, message, admin_reply, is_resolved, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Subject, t.Message, t.AdminReply, t.IsResolved, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (r *TicketRepo) Get(ctx context.Context, id string) (domain.SupportTicket, error) {
	var t domain.SupportTicket
	if err := sqlx.GetContext(ctx, r.db, &t, ticketSelect+` WHERE t.id = ?`, id); err != nil {
		return t, notFound(err, "ticket")
	}
	return t, nil
}

func (r *TicketRepo) ListAll(ctx context.Context) ([]domain.SupportTicket, error) {
	out := []domain.SupportTicket{}
	err := sqlx.SelectContext(ctx, r.db, &out, ticketSelect+` ORDER BY t.created_at DESC, t.rowid DESC`)
	return out, err
}

func (r *TicketRepo) ListByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	out := []domain.SupportTicket{}
	err := sqlx.SelectContext(ctx, r.db, &out, ticketSelect+`
	WHERE t.user_id = ?
	ORDER BY t.created_at DESC, t.rowid DESC`, userID)
	return out, err
}

func (r *TicketRepo) Save(ctx context.Context, t *domain.SupportTicket) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE support_tickets SET subject = ?, message = ?, admin_reply = ?, is_resolved = ? WHERE id = ?
	`, t.Subject, t.Message, t.AdminReply, t.IsResolved, t.ID)
	return affected(res, err, "ticket")
}

func (r *TicketRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM support_tickets WHERE id = ?`, id)
	return affected(res, err, "ticket")
}
