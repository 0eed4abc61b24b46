package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, "categories.list", err)
	}
	return c.JSON(cats)
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	cat, err := h.Catalog.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "categories.get", err)
	}
	return c.JSON(cat)
}

// POST /api/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.CategoryInput
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.categories.create", err)
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), p, in)
	if err != nil {
		return fail(c, "admin.categories.create", err)
	}
	applog.Audit(c, "admin.categories.create", map[string]any{"category_id": cat.ID, "name": cat.Name})
	return created(c, cat)
}

// PUT|PATCH /api/categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.CategoryInput
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.categories.update", err)
	}
	cat, err := h.Catalog.RenameCategory(c.UserContext(), p, c.Params("id"), in)
	if err != nil {
		return fail(c, "admin.categories.update", err)
	}
	applog.Audit(c, "admin.categories.update", map[string]any{"category_id": cat.ID, "name": cat.Name})
	return c.JSON(cat)
}

// DELETE /api/categories/:id
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	p, _ := principal(c)
	id := c.Params("id")
	if err := h.Catalog.DeleteCategory(c.UserContext(), p, id); err != nil {
		return fail(c, "admin.categories.delete", err)
	}
	applog.Audit(c, "admin.categories.delete", map[string]any{"category_id": id})
	return noContent(c)
}
