package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"bookmarket/internal/domain"
	applog "bookmarket/internal/log"
	"bookmarket/internal/repos"
	"bookmarket/internal/services"
)

type BookHandler struct {
	Catalog *services.CatalogService
}

func priceParam(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.Validation(name, "Enter a number.")
	}
	return &d, nil
}

// filter reads the listing query string: search, category, condition,
// status, min_price, max_price and ordering.
func filter(c *fiber.Ctx) (repos.BookFilter, error) {
	f := repos.BookFilter{
		Search:     c.Query("search"),
		CategoryID: strings.TrimSpace(c.Query("category")),
		Condition:  domain.Condition(strings.TrimSpace(c.Query("condition"))),
		Status:     domain.BookStatus(strings.TrimSpace(c.Query("status"))),
		Ordering:   strings.TrimSpace(c.Query("ordering")),
	}
	if f.Condition != "" && f.Condition != domain.ConditionNew && f.Condition != domain.ConditionUsed {
		return f, domain.Validation("condition", "Select a valid choice.")
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, domain.Validation("status", "Select a valid choice.")
	}
	var err error
	if f.MinPrice, err = priceParam(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		return f, err
	}
	return f, nil
}

// GET /api/books
func (h *BookHandler) List(c *fiber.Ctx) error {
	p, _ := principal(c)
	f, err := filter(c)
	if err != nil {
		return fail(c, "books.list", err)
	}
	books, err := h.Catalog.ListBooks(c.UserContext(), p, f)
	if err != nil {
		return fail(c, "books.list", err)
	}
	return c.JSON(books)
}

// GET /api/books/:id
func (h *BookHandler) Detail(c *fiber.Ctx) error {
	p, _ := principal(c)
	b, err := h.Catalog.GetBook(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return fail(c, "books.get", err)
	}
	return c.JSON(b)
}

// POST /api/books is closed; sellers list books through their inventory.
func (h *BookHandler) Create(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
		"detail": "To add a book, please use the 'my-inventory' endpoint.",
	})
}

// POST /api/admin/books
func (h *BookHandler) AdminCreate(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.BookInput
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.books.create", err)
	}
	b, err := h.Catalog.AdminCreate(c.UserContext(), p, in)
	if err != nil {
		return fail(c, "admin.books.create", err)
	}
	applog.Audit(c, "admin.books.create", map[string]any{"book_id": b.ID, "seller": b.SellerID})
	return created(c, b)
}

// PUT|PATCH /api/books/:id
func (h *BookHandler) Update(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in services.BookPatch
	if err := bind(c, &in); err != nil {
		return fail(c, "books.update", err)
	}
	b, err := h.Catalog.Update(c.UserContext(), p, c.Params("id"), in)
	if err != nil {
		return fail(c, "books.update", err)
	}
	applog.Info(c, "books.update", map[string]any{"book_id": b.ID, "status": string(b.Status)})
	return c.JSON(b)
}

// DELETE /api/books/:id
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	p, _ := principal(c)
	id := c.Params("id")
	if err := h.Catalog.DeleteBook(c.UserContext(), p, id); err != nil {
		return fail(c, "books.delete", err)
	}
	applog.Audit(c, "books.delete", map[string]any{"book_id": id})
	return noContent(c)
}

// POST /api/books/:id/approve
func (h *BookHandler) Approve(c *fiber.Ctx) error {
	p, _ := principal(c)
	b, err := h.Catalog.Approve(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return fail(c, "admin.books.approve", err)
	}
	applog.Audit(c, "admin.books.approve", map[string]any{"book_id": b.ID})
	return c.JSON(fiber.Map{"status": "Book approved successfully"})
}

// POST /api/books/:id/reject
func (h *BookHandler) Reject(c *fiber.Ctx) error {
	p, _ := principal(c)
	b, err := h.Catalog.Reject(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return fail(c, "admin.books.reject", err)
	}
	applog.Audit(c, "admin.books.reject", map[string]any{"book_id": b.ID})
	return c.JSON(fiber.Map{"status": "Book rejected", "seller_notified": true})
}

// POST /api/books/:id/image (multipart field "image")
func (h *BookHandler) UploadCover(c *fiber.Ctx) error {
	p, _ := principal(c)
	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, "books.cover", domain.Validation("image", "No file was submitted."))
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := h.Catalog.SetCover(c.UserContext(), p, c.Params("id"), f)
	if err != nil {
		return fail(c, "books.cover", err)
	}
	applog.Info(c, "books.cover", map[string]any{"book_id": b.ID, "bytes": fh.Size})
	return c.JSON(b)
}
