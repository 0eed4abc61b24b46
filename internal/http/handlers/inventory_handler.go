package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

// InventoryHandler is the seller's view of their own listings.
type InventoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/books/my-inventory
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	p, _ := principal(c)
	books, err := h.Catalog.Inventory(c.UserContext(), p)
	if err != nil {
		return fail(c, "inventory.list", err)
	}
	return c.JSON(books)
}

// POST /api/books/my-inventory
func (h *InventoryHandler) Add(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.BookInput
	if err := bind(c, &in); err != nil {
		return fail(c, "inventory.add", err)
	}
	b, err := h.Catalog.CreateForSeller(c.UserContext(), p, in)
	if err != nil {
		return fail(c, "inventory.add", err)
	}
	applog.Audit(c, "inventory.add", map[string]any{"book_id": b.ID, "price": b.Price.String()})
	return created(c, b)
}
