package repos

import (
	"context"
	"fmt"

	"bookmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

type NotificationRepo struct{ db sqlx.ExtContext }

func NewNotificationRepo(db sqlx.ExtContext) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationCols = `id, user_id, message, is_read, created_at`

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications(id, user_id, message, is_read, created_at)
		VALUES(?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Message, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) Get(ctx context.Context, id string) (domain.Notification, error) {
	var n domain.Notification
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id); err != nil {
		return n, notFound(err, "notification")
	}
	return n, nil
}

func (r *NotificationRepo) ListAll(ctx context.Context) ([]domain.Notification, error) {
	out := []domain.Notification{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+notificationCols+` FROM notifications
		ORDER BY created_at DESC, rowid DESC`)
	return out, err
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	out := []domain.Notification{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+notificationCols+` FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
	return out, err
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	return affected(res, err, "notification")
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	return affected(res, err, "notification")
}
