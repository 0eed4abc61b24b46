package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
	// ExposeResetCode echoes the reset code back for environments without a mailer.
	ExposeResetCode bool
}

// POST /api/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.register", err)
	}
	u, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID, "username": u.Username})
	return created(c, fiber.Map{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"phone_number": u.Phone,
		"role":         u.Role,
	})
}

type credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// POST /api/token
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in credentials
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.login", err)
	}
	tok, u, err := h.Auth.Login(c.UserContext(), in.Username, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"username": in.Username})
		return fail(c, "auth.login", err)
	}
	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return c.JSON(tok)
}

// POST /api/password-reset/request
func (h *AuthHandler) ResetRequest(c *fiber.Ctx) error {
	var in services.ResetRequest
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.reset.request", err)
	}
	code, err := h.Auth.RequestReset(c.UserContext(), in)
	if err != nil {
		return fail(c, "auth.reset.request", err)
	}
	applog.Audit(c, "auth.reset.request", map[string]any{"username": in.Username})
	out := fiber.Map{"message": "Verification code generated successfully."}
	if h.ExposeResetCode {
		out["code_for_testing"] = code
	}
	return c.JSON(out)
}

// POST /api/password-reset/confirm
func (h *AuthHandler) ResetConfirm(c *fiber.Ctx) error {
	var in services.ResetConfirm
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.reset.confirm", err)
	}
	if err := h.Auth.ConfirmReset(c.UserContext(), in); err != nil {
		applog.Security(c, "auth.reset.fail", nil)
		return fail(c, "auth.reset.confirm", err)
	}
	applog.Audit(c, "auth.reset.confirm", nil)
	return c.JSON(fiber.Map{"message": "Password updated successfully!"})
}
