package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookmarket/internal/domain"
	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

// AdminHandler covers account management and the dashboard report.
type AdminHandler struct {
	Users   *services.UserService
	Reports *services.ReportService
}

// GET /api/admin-reports
func (h *AdminHandler) Report(c *fiber.Ctx) error {
	p, _ := principal(c)
	r, err := h.Reports.Summary(c.UserContext(), p)
	if err != nil {
		return fail(c, "admin.report", err)
	}
	return c.JSON(r)
}

// GET /api/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	p, _ := principal(c)
	users, err := h.Users.List(c.UserContext(), p)
	if err != nil {
		return fail(c, "admin.users.list", err)
	}
	return c.JSON(users)
}

// GET /api/users/:id
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	p, _ := principal(c)
	u, err := h.Users.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return fail(c, "admin.users.get", err)
	}
	return c.JSON(u)
}

// POST /api/users
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.UserInput
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.users.create", err)
	}
	u, err := h.Users.Create(c.UserContext(), p, in)
	if err != nil {
		return fail(c, "admin.users.create", err)
	}
	applog.Audit(c, "admin.users.create", map[string]any{"target": u.ID, "role": string(u.Role)})
	return created(c, u)
}

// PUT /api/users/:id
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.UserInput
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.users.update", err)
	}
	u, err := h.Users.Update(c.UserContext(), p, c.Params("id"), in)
	if err != nil {
		return fail(c, "admin.users.update", err)
	}
	applog.Audit(c, "admin.users.update", map[string]any{"target": u.ID})
	return c.JSON(u)
}

// DELETE /api/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	p, _ := principal(c)
	id := c.Params("id")
	if err := h.Users.Delete(c.UserContext(), p, id); err != nil {
		return fail(c, "admin.users.delete", err)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"target": id})
	return noContent(c)
}

// POST /api/users/:id/update-role
func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in struct {
		Role domain.Role `json:"role"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.users.role", err)
	}
	id := c.Params("id")
	if err := h.Users.UpdateRole(c.UserContext(), p, id, in.Role); err != nil {
		return fail(c, "admin.users.role", err)
	}
	applog.Audit(c, "admin.users.role", map[string]any{"target": id, "role": string(in.Role)})
	return c.JSON(fiber.Map{"status": "User role updated to " + string(in.Role)})
}
