package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

// ProfileHandler serves the caller's own account and activity.
type ProfileHandler struct {
	Users  *services.UserService
	Orders *services.OrderService
}

// GET /api/profile
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	p, _ := principal(c)
	u, err := h.Users.Profile(c.UserContext(), p)
	if err != nil {
		return fail(c, "profile.get", err)
	}
	return c.JSON(u)
}

// PUT|PATCH /api/profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.ProfilePatch
	if err := bind(c, &in); err != nil {
		return fail(c, "profile.update", err)
	}
	u, err := h.Users.UpdateProfile(c.UserContext(), p, in)
	if err != nil {
		return fail(c, "profile.update", err)
	}
	applog.Info(c, "profile.update", nil)
	return c.JSON(u)
}

// GET /api/profile/history
func (h *ProfileHandler) History(c *fiber.Ctx) error {
	p, _ := principal(c)
	hist, err := h.Orders.History(c.UserContext(), p)
	if err != nil {
		return fail(c, "profile.history", err)
	}
	return c.JSON(hist)
}

// GET /api/profile/sales
func (h *ProfileHandler) Sales(c *fiber.Ctx) error {
	p, _ := principal(c)
	s, err := h.Orders.Sales(c.UserContext(), p)
	if err != nil {
		return fail(c, "profile.sales", err)
	}
	return c.JSON(s)
}
