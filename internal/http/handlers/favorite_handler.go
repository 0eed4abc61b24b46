package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

type FavoriteHandler struct {
	Favs *services.FavoriteService
}

// GET /api/favorites
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	p, _ := principal(c)
	items, err := h.Favs.List(c.UserContext(), p)
	if err != nil {
		return fail(c, "favorites.list", err)
	}
	return c.JSON(items)
}

// GET /api/favorites/:id
func (h *FavoriteHandler) Get(c *fiber.Ctx) error {
	p, _ := principal(c)
	item, err := h.Favs.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return fail(c, "favorites.get", err)
	}
	return c.JSON(item)
}

// POST /api/favorites
func (h *FavoriteHandler) Save(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in struct {
		Book string `json:"book"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "favorites.save", err)
	}
	item, err := h.Favs.Add(c.UserContext(), p, in.Book)
	if err != nil {
		return fail(c, "favorites.save", err)
	}
	applog.Info(c, "favorites.save", map[string]any{"book_id": in.Book})
	return created(c, item)
}

// DELETE /api/favorites/:id
func (h *FavoriteHandler) Unsave(c *fiber.Ctx) error {
	p, _ := principal(c)
	id := c.Params("id")
	if err := h.Favs.Remove(c.UserContext(), p, id); err != nil {
		return fail(c, "favorites.delete", err)
	}
	applog.Info(c, "favorites.delete", map[string]any{"favorite_id": id})
	return noContent(c)
}
