package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

type SupportHandler struct {
	Support *services.SupportService
}

// GET /api/support-tickets
func (h *SupportHandler) List(c *fiber.Ctx) error {
	p, _ := principal(c)
	ts, err := h.Support.List(c.UserContext(), p)
	if err != nil {
		return fail(c, "tickets.list", err)
	}
	return c.JSON(ticketsFor(p, ts))
}

// GET /api/support-tickets/:id
func (h *SupportHandler) Get(c *fiber.Ctx) error {
	p, _ := principal(c)
	t, err := h.Support.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return fail(c, "tickets.get", err)
	}
	return c.JSON(ticketFor(p, t))
}

// POST /api/support-tickets
func (h *SupportHandler) Open(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.TicketInput
	if err := bind(c, &in); err != nil {
		return fail(c, "tickets.open", err)
	}
	t, err := h.Support.Open(c.UserContext(), p, in)
	if err != nil {
		return fail(c, "tickets.open", err)
	}
	applog.Info(c, "tickets.open", map[string]any{"ticket_id": t.ID, "subject": string(t.Subject)})
	return created(c, ticketFor(p, t))
}

// PATCH /api/support-tickets/:id
func (h *SupportHandler) Patch(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.TicketPatch
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.tickets.update", err)
	}
	t, err := h.Support.Patch(c.UserContext(), p, c.Params("id"), in)
	if err != nil {
		return fail(c, "admin.tickets.update", err)
	}
	applog.Audit(c, "admin.tickets.update", map[string]any{"ticket_id": t.ID, "resolved": t.IsResolved})
	return c.JSON(ticketFor(p, t))
}

// POST /api/support-tickets/:id/reply
func (h *SupportHandler) Reply(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in struct {
		AdminReply string `json:"admin_reply"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.tickets.reply", err)
	}
	t, err := h.Support.Reply(c.UserContext(), p, c.Params("id"), in.AdminReply)
	if err != nil {
		return fail(c, "admin.tickets.reply", err)
	}
	applog.Audit(c, "admin.tickets.reply", map[string]any{"ticket_id": t.ID})
	return c.JSON(fiber.Map{"status": "Response sent and ticket marked as resolved."})
}

// DELETE /api/support-tickets/:id
func (h *SupportHandler) Close(c *fiber.Ctx) error {
	p, _ := principal(c)
	id := c.Params("id")
	if err := h.Support.Close(c.UserContext(), p, id); err != nil {
		return fail(c, "tickets.delete", err)
	}
	applog.Info(c, "tickets.delete", map[string]any{"ticket_id": id})
	return noContent(c)
}
