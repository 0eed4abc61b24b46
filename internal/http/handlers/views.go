package handlers

import (
	"time"

	"bookmarket/internal/domain"
)

// ticketView is what the ticket's opener sees.
type ticketView struct {
	ID         string               `json:"id"`
	User       string               `json:"user"`
	Subject    domain.TicketSubject `json:"subject"`
	Message    string               `json:"message"`
	AdminReply *string              `json:"admin_reply"`
	IsResolved bool                 `json:"is_resolved"`
	CreatedAt  time.Time            `json:"created_at"`
}

// adminTicketView adds what staff need to follow up.
type adminTicketView struct {
	ticketView
	UserID       string `json:"user_id"`
	SubjectLabel string `json:"subject_display"`
}

func ticketFor(p domain.Principal, t domain.SupportTicket) any {
	v := ticketView{
		ID:         t.ID,
		User:       t.Username,
		Subject:    t.Subject,
		Message:    t.Message,
		AdminReply: t.AdminReply,
		IsResolved: t.IsResolved,
		CreatedAt:  t.CreatedAt,
	}
	if p.IsAdmin() {
		return adminTicketView{ticketView: v, UserID: t.UserID, SubjectLabel: t.Subject.Label()}
	}
	return v
}

func ticketsFor(p domain.Principal, ts []domain.SupportTicket) []any {
	out := make([]any, 0, len(ts))
	for _, t := range ts {
		out = append(out, ticketFor(p, t))
	}
	return out
}
