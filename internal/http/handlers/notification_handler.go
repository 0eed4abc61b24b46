package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

type NotificationHandler struct {
	Notes *services.NotificationService
}

// GET /api/notifications
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	p, _ := principal(c)
	ns, err := h.Notes.List(c.UserContext(), p)
	if err != nil {
		return fail(c, "notifications.list", err)
	}
	return c.JSON(ns)
}

// GET /api/notifications/:id marks the notification read when its recipient opens it.
func (h *NotificationHandler) Get(c *fiber.Ctx) error {
	p, _ := principal(c)
	n, err := h.Notes.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return fail(c, "notifications.get", err)
	}
	return c.JSON(n)
}

// POST /api/notifications/:id/mark-as-read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	p, _ := principal(c)
	if err := h.Notes.MarkRead(c.UserContext(), p, c.Params("id")); err != nil {
		return fail(c, "notifications.read", err)
	}
	return c.JSON(fiber.Map{"status": "notification marked as read"})
}

// POST /api/notifications
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in struct {
		User    string `json:"user"`
		Message string `json:"message"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.notifications.create", err)
	}
	n, err := h.Notes.Create(c.UserContext(), p, in.User, in.Message)
	if err != nil {
		return fail(c, "admin.notifications.create", err)
	}
	applog.Audit(c, "admin.notifications.create", map[string]any{"notification_id": n.ID, "recipient": n.UserID})
	return created(c, n)
}

// DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	p, _ := principal(c)
	id := c.Params("id")
	if err := h.Notes.Delete(c.UserContext(), p, id); err != nil {
		return fail(c, "admin.notifications.delete", err)
	}
	applog.Audit(c, "admin.notifications.delete", map[string]any{"notification_id": id})
	return noContent(c)
}
