package handlers

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"

	"bookmarket/internal/domain"
	applog "bookmarket/internal/log"
	"bookmarket/internal/validate"
)

const friendlyError = "Something went wrong. Please try again."

var errBadBody = domain.Validation("", "Malformed request body.")

// ErrorHandler is the app-wide fallback. Framework errors keep their status;
// everything else is logged and hidden behind a friendly 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": friendlyError})
}

func kindStatus(k domain.ErrorKind) int {
	switch k {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindPermission:
		return fiber.StatusForbidden
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindUnauthenticated:
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

// fail writes a caller-facing service error as JSON. Unknown errors are
// passed on to ErrorHandler.
func fail(c *fiber.Ctx, action string, err error) error {
	var fields validate.Errors
	if errors.As(err, &fields) {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		applog.Security(c, "validation.fail", map[string]any{"op": action, "fields": keys})
		return c.Status(fiber.StatusBadRequest).JSON(fields)
	}

	var de *domain.Error
	if !errors.As(err, &de) {
		return err
	}
	status := kindStatus(de.Kind)
	switch de.Kind {
	case domain.KindValidation:
		applog.Security(c, "validation.fail", map[string]any{"op": action, "field": de.Field})
		if de.Field != "" {
			return c.Status(status).JSON(fiber.Map{de.Field: de.Message})
		}
		return c.Status(status).JSON(fiber.Map{"error": de.Message})
	case domain.KindPermission, domain.KindUnauthenticated:
		applog.Security(c, "access.denied", map[string]any{"op": action})
	case domain.KindConflict:
		applog.Info(c, action+".conflict", nil)
	}
	return c.Status(status).JSON(fiber.Map{"detail": de.Message})
}

// bind decodes the request body into dst.
func bind(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return errBadBody
	}
	return nil
}

func created(c *fiber.Ctx, v any) error {
	return c.Status(fiber.StatusCreated).JSON(v)
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
