package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookmarket/internal/domain"
	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// POST /api/orders buys a book; payment is simulated and always succeeds.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in struct {
		Book string `json:"book"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "order.place", err)
	}
	rc, err := h.Orders.Place(c.UserContext(), p, in.Book)
	if err != nil {
		return fail(c, "order.place", err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id":      rc.OrderID,
		"book_id":       in.Book,
		"amount":        rc.Price.String(),
		"tracking_code": rc.TrackingCode,
	})
	return created(c, fiber.Map{
		"message":       "Purchase completed successfully!",
		"order_details": rc,
	})
}

// GET /api/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	p, _ := principal(c)
	orders, err := h.Orders.List(c.UserContext(), p)
	if err != nil {
		return fail(c, "orders.list", err)
	}
	return c.JSON(orders)
}

// GET /api/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	p, _ := principal(c)
	o, err := h.Orders.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return fail(c, "orders.get", err)
	}
	return c.JSON(o)
}

// PATCH /api/orders/:id moves the order along; admins only.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	p, _ := principal(c)
	var in struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.orders.update", err)
	}
	o, err := h.Orders.UpdateStatus(c.UserContext(), p, c.Params("id"), in.Status)
	if err != nil {
		return fail(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": o.ID, "status": string(o.Status)})
	return c.JSON(o)
}

// DELETE /api/orders/:id
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	p, _ := principal(c)
	id := c.Params("id")
	if err := h.Orders.Delete(c.UserContext(), p, id); err != nil {
		return fail(c, "orders.delete", err)
	}
	applog.Audit(c, "orders.delete", map[string]any{"order_id": id})
	return noContent(c)
}

// POST /api/orders/:id/pay
//
// Deprecated: POST /api/orders already pays.
func (h *OrderHandler) Pay(c *fiber.Ctx) error {
	p, _ := principal(c)
	id := c.Params("id")
	tx, err := h.Orders.Pay(c.UserContext(), p, id)
	if err != nil {
		return fail(c, "order.pay", err)
	}
	ref := ""
	if tx.RefID != nil {
		ref = *tx.RefID
	}
	applog.Audit(c, "order.pay", map[string]any{"order_id": id, "amount": tx.Amount.String(), "tracking_code": ref})
	return c.JSON(fiber.Map{"message": "Payment successful", "tracking_code": ref})
}

// GET /api/orders/my-invoices
func (h *OrderHandler) Invoices(c *fiber.Ctx) error {
	p, _ := principal(c)
	inv, err := h.Orders.Invoices(c.UserContext(), p)
	if err != nil {
		return fail(c, "orders.invoices", err)
	}
	return c.JSON(inv)
}

// GET /api/transactions
func (h *OrderHandler) Transactions(c *fiber.Ctx) error {
	p, _ := principal(c)
	txs, err := h.Orders.Transactions(c.UserContext(), p)
	if err != nil {
		return fail(c, "transactions.list", err)
	}
	return c.JSON(txs)
}

// GET /api/transactions/:id
func (h *OrderHandler) Transaction(c *fiber.Ctx) error {
	p, _ := principal(c)
	tx, err := h.Orders.Transaction(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return fail(c, "transactions.get", err)
	}
	return c.JSON(tx)
}
