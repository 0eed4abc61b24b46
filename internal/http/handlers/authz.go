package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookmarket/internal/auth"
	"bookmarket/internal/domain"
	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

// Authenticate resolves a bearer token, when one is sent, to the calling user.
// Requests without a token continue anonymously.
func Authenticate(authSvc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if tok == "" {
			return c.Next()
		}
		u, err := authSvc.CurrentUser(c.UserContext(), tok)
		if err != nil {
			return fail(c, "auth.token", err)
		}
		c.Locals("user", u.Principal())
		return c.Next()
	}
}

// principal returns the caller, or the zero Principal for anonymous requests.
func principal(c *fiber.Ctx) (domain.Principal, bool) {
	p, ok := c.Locals("user").(domain.Principal)
	return p, ok
}

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := principal(c); !ok {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Authentication credentials were not provided."})
		}
		return c.Next()
	}
}

// RequireAdmin lets only staff and admin-role users through.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Authentication credentials were not provided."})
		}
		if !p.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"role": string(p.Role)})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "You do not have permission to perform this action."})
		}
		return c.Next()
	}
}
