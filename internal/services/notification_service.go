package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookmarket/internal/domain"
	"bookmarket/internal/repos"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Message templates for every notification the system emits.
func msgPaymentSuccess(orderID, ref string) string {
	return fmt.Sprintf("Your payment for order #%s was successful. Tracking code: %s", orderID, ref)
}

func msgBookSold(title, orderID string) string {
	return fmt.Sprintf("Your book '%s' has been sold! Order #%s is ready for shipping.", title, orderID)
}

func msgOrderStatus(orderID string, status domain.OrderStatus) string {
	return fmt.Sprintf("The status of your order #%s has been updated to: %s.", orderID, status)
}

func msgBookApproved(title string) string {
	return fmt.Sprintf("Book approved: '%s' is now visible to buyers.", title)
}

func msgBookRejected(title string) string {
	return fmt.Sprintf("Unfortunately, your book '%s' was rejected and set back to pending.", title)
}

func msgTicketReply(subject domain.TicketSubject) string {
	return "Admin has replied to your ticket regarding: " + subject.Label()
}

// Emit records an unread notification. Pass the caller's transaction so the
// notification commits or rolls back with the state change that caused it.
func Emit(ctx context.Context, db sqlx.ExtContext, userID, message string) error {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	return repos.NewNotificationRepo(db).Create(ctx, n)
}

type NotificationService struct {
	DB *sqlx.DB
}

func NewNotificationService(db *sqlx.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// List returns the caller's notifications newest first; admins see everyone's.
func (s *NotificationService) List(ctx context.Context, actor domain.Principal) ([]domain.Notification, error) {
	r := repos.NewNotificationRepo(s.DB)
	if actor.IsAdmin() {
		return r.ListAll(ctx)
	}
	return r.ListByUser(ctx, actor.ID)
}

func (s *NotificationService) visible(ctx context.Context, actor domain.Principal, id string) (domain.Notification, error) {
	n, err := repos.NewNotificationRepo(s.DB).Get(ctx, id)
	if err != nil {
		return n, err
	}
	if n.UserID != actor.ID && !actor.IsAdmin() {
		return n, domain.NotFound("notification")
	}
	return n, nil
}

// Get returns one notification. A recipient reading their own unread
// notification marks it read; reading it again changes nothing.
func (s *NotificationService) Get(ctx context.Context, actor domain.Principal, id string) (domain.Notification, error) {
	n, err := s.visible(ctx, actor, id)
	if err != nil {
		return n, err
	}
	if n.UserID == actor.ID && !n.IsRead {
		if err := repos.NewNotificationRepo(s.DB).MarkRead(ctx, id); err != nil {
			return n, err
		}
		n.IsRead = true
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Principal, id string) error {
	if _, err := s.visible(ctx, actor, id); err != nil {
		return err
	}
	return repos.NewNotificationRepo(s.DB).MarkRead(ctx, id)
}

// Create lets an admin send a manual notification.
func (s *NotificationService) Create(ctx context.Context, actor domain.Principal, userID, message string) (domain.Notification, error) {
	if !actor.IsAdmin() {
		return domain.Notification{}, domain.Forbidden("Only admins can create notifications.")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.Notification{}, domain.Validation("message", "This field is required.")
	}
	if _, err := repos.NewUserRepo(s.DB).ByID(ctx, userID); err != nil {
		return domain.Notification{}, asField(err, "user", "Invalid user.")
	}
	n := domain.Notification{ID: uuid.NewString(), UserID: userID, Message: message, CreatedAt: time.Now().UTC()}
	if err := repos.NewNotificationRepo(s.DB).Create(ctx, &n); err != nil {
		return n, err
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("Only admins can delete notifications.")
	}
	return repos.NewNotificationRepo(s.DB).Delete(ctx, id)
}

// asField turns a NotFound on a referenced entity into a validation error on the request field.
func asField(err error, field, msg string) error {
	if isNotFound(err) {
		return domain.Validation(field, msg)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
