package services

import (
	"context"
	"strings"
	"time"

	"bookmarket/internal/domain"
	"bookmarket/internal/repos"
	"bookmarket/internal/validate"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SupportService runs the ticket lifecycle. Tickets only move from open to resolved.
type SupportService struct {
	DB *sqlx.DB
}

func NewSupportService(db *sqlx.DB) *SupportService { return &SupportService{DB: db} }

type TicketInput struct {
	Subject domain.TicketSubject `json:"subject" validate:"required,oneof=technical payment report other"`
	Message string               `json:"message" validate:"required"`
}

// TicketPatch is what an admin may change. The opener's subject and message are not in it.
type TicketPatch struct {
	AdminReply *string `json:"admin_reply"`
	IsResolved *bool   `json:"is_resolved"`
}

// Open files a ticket for the caller.
func (s *SupportService) Open(ctx context.Context, actor domain.Principal, in TicketInput) (domain.SupportTicket, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validate.Struct(in); err != nil {
		return domain.SupportTicket{}, err
	}
	t := &domain.SupportTicket{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: time.Now().UTC(),
	}
	tickets := repos.NewTicketRepo(s.DB)
	if err := tickets.Create(ctx, t); err != nil {
		return domain.SupportTicket{}, err
	}
	return tickets.Get(ctx, t.ID)
}

func (s *SupportService) List(ctx context.Context, actor domain.Principal) ([]domain.SupportTicket, error) {
	r := repos.NewTicketRepo(s.DB)
	if actor.IsAdmin() {
		return r.ListAll(ctx)
	}
	return r.ListByUser(ctx, actor.ID)
}

func (s *SupportService) Get(ctx context.Context, actor domain.Principal, id string) (domain.SupportTicket, error) {
	return s.visible(ctx, repos.NewTicketRepo(s.DB), actor, id)
}

func (s *SupportService) visible(ctx context.Context, r *repos.TicketRepo, actor domain.Principal, id string) (domain.SupportTicket, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return t, err
	}
	if t.UserID != actor.ID && !actor.IsAdmin() {
		return domain.SupportTicket{}, domain.NotFound("ticket")
	}
	return t, nil
}

// Reply records the admin's answer, resolves the ticket and tells the opener.
func (s *SupportService) Reply(ctx context.Context, actor domain.Principal, id, reply string) (domain.SupportTicket, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.SupportTicket{}, err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return domain.SupportTicket{}, domain.Validation("admin_reply", "Please provide admin_reply text.")
	}
	resolved := true
	return s.Patch(ctx, actor, id, TicketPatch{AdminReply: &reply, IsResolved: &resolved})
}

// Patch applies an admin edit. Whenever the saved ticket carries a reply, the opener is notified.
func (s *SupportService) Patch(ctx context.Context, actor domain.Principal, id string, p TicketPatch) (domain.SupportTicket, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.SupportTicket{}, err
	}
	var out domain.SupportTicket
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		tickets := repos.NewTicketRepo(tx)
		t, err := tickets.Get(ctx, id)
		if err != nil {
			return err
		}
		if p.AdminReply != nil {
			reply := strings.TrimSpace(*p.AdminReply)
			if reply == "" {
				t.AdminReply = nil
			} else {
				t.AdminReply = &reply
			}
		}
		if p.IsResolved != nil {
			t.IsResolved = *p.IsResolved
		}
		if err := tickets.Save(ctx, &t); err != nil {
			return err
		}
		if t.AdminReply != nil {
			if err := Emit(ctx, tx, t.UserID, msgTicketReply(t.Subject)); err != nil {
				return err
			}
		}
		out = t
		return nil
	})
	return out, err
}

// Close deletes a ticket; the opener or an admin may do so.
func (s *SupportService) Close(ctx context.Context, actor domain.Principal, id string) error {
	tickets := repos.NewTicketRepo(s.DB)
	if _, err := s.visible(ctx, tickets, actor, id); err != nil {
		return err
	}
	return tickets.Delete(ctx, id)
}
