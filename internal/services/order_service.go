package services

import (
	"context"
	"errors"
	"time"

	"bookmarket/internal/domain"
	"bookmarket/internal/lock"
	"bookmarket/internal/repos"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// OrderService runs the purchase workflow and the order/transaction read paths.
type OrderService struct {
	DB    *sqlx.DB
	Locks lock.Locker
}

func NewOrderService(db *sqlx.DB, locks lock.Locker) *OrderService {
	if locks == nil {
		locks = lock.NewMemory()
	}
	return &OrderService{DB: db, Locks: locks}
}

// Receipt confirms a completed purchase.
type Receipt struct {
	OrderID      string          `json:"order_id"`
	Book         string          `json:"book"`
	Price        decimal.Decimal `json:"price"`
	TrackingCode string          `json:"tracking_code"`
	Date         time.Time       `json:"date"`
}

func trackingCode() string { return uuid.NewString()[:8] }

func bookKey(id string) string { return "book:" + id }

// withBook runs fn while holding the book's purchase lock.
func (s *OrderService) withBook(ctx context.Context, bookID string, fn func() error) error {
	release, err := s.Locks.Acquire(ctx, bookKey(bookID))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return domain.Conflict("This book is being purchased by someone else. Please retry.")
		}
		return err
	}
	defer release()
	return fn()
}

// Place buys a book for the caller. Payment is simulated and always succeeds:
// the order is created paid, its transaction succeeds and the book is sold,
// all in one database transaction under the book's lock.
func (s *OrderService) Place(ctx context.Context, actor domain.Principal, bookID string) (Receipt, error) {
	if bookID == "" {
		return Receipt{}, domain.Validation("book", "This field is required.")
	}
	var rc Receipt
	err := s.withBook(ctx, bookID, func() error {
		return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
			books := repos.NewBookRepo(tx)
			b, err := books.Get(ctx, bookID)
			if err != nil {
				return asField(err, "book", "Invalid book.")
			}
			switch {
			case b.Status == domain.BookSold:
				return domain.Validation("book", "This book is already sold.")
			case !b.Visible():
				return domain.Validation("book", "This book is not available for purchase.")
			}

			now := time.Now().UTC()
			o := &domain.Order{ID: uuid.NewString(), BookID: b.ID, BuyerID: actor.ID, Status: domain.OrderPaid, CreatedAt: now}
			if err := repos.NewOrderRepo(tx).Create(ctx, o); err != nil {
				return err
			}
			ref := trackingCode()
			t := &domain.Transaction{ID: uuid.NewString(), OrderID: o.ID, Amount: b.Price, RefID: &ref, Status: domain.TxSuccess, CreatedAt: now}
			if err := repos.NewTransactionRepo(tx).Create(ctx, t); err != nil {
				return err
			}
			sold, err := books.MarkSold(ctx, b.ID)
			if err != nil {
				return err
			}
			if !sold {
				return domain.Conflict("This book was sold to another buyer. Please retry.")
			}
			if err := Emit(ctx, tx, o.BuyerID, msgPaymentSuccess(o.ID, ref)); err != nil {
				return err
			}
			if err := Emit(ctx, tx, b.SellerID, msgBookSold(b.Title, o.ID)); err != nil {
				return err
			}
			rc = Receipt{OrderID: o.ID, Book: b.Title, Price: b.Price, TrackingCode: ref, Date: o.CreatedAt}
			return nil
		})
	})
	return rc, err
}

// Pay settles an existing unpaid order.
//
// Deprecated: Place already pays. Pay remains for clients that create orders out of band.
func (s *OrderService) Pay(ctx context.Context, actor domain.Principal, orderID string) (domain.Transaction, error) {
	o, err := s.owned(ctx, actor, orderID)
	if err != nil {
		return domain.Transaction{}, err
	}
	var out domain.Transaction
	err = s.withBook(ctx, o.BookID, func() error {
		return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
			orders := repos.NewOrderRepo(tx)
			o, err := orders.Get(ctx, orderID)
			if err != nil {
				return err
			}
			if o.Status == domain.OrderPaid {
				return domain.Validation("order", "Order already paid")
			}
			books := repos.NewBookRepo(tx)
			b, err := books.Get(ctx, o.BookID)
			if err != nil {
				return err
			}

			txs := repos.NewTransactionRepo(tx)
			t, err := txs.ByOrder(ctx, o.ID)
			switch {
			case isNotFound(err):
				t = domain.Transaction{ID: uuid.NewString(), OrderID: o.ID, Amount: b.Price, Status: domain.TxPending, CreatedAt: time.Now().UTC()}
				if err := txs.Create(ctx, &t); err != nil {
					return err
				}
			case err != nil:
				return err
			}
			ref := trackingCode()
			t.Status, t.RefID = domain.TxSuccess, &ref
			if err := txs.Settle(ctx, t.ID, t.Status, t.RefID); err != nil {
				return err
			}

			if err := orders.UpdateStatus(ctx, o.ID, domain.OrderPaid); err != nil {
				return err
			}
			// The book may already be sold to this very order.
			if _, err := books.MarkSold(ctx, b.ID); err != nil {
				return err
			}
			if err := Emit(ctx, tx, o.BuyerID, msgOrderStatus(o.ID, domain.OrderPaid)); err != nil {
				return err
			}
			out = t
			return nil
		})
	})
	return out, err
}

// owned loads an order the caller may act on: their own, or any for admins.
func (s *OrderService) owned(ctx context.Context, actor domain.Principal, id string) (domain.Order, error) {
	o, err := repos.NewOrderRepo(s.DB).Get(ctx, id)
	if err != nil {
		return o, err
	}
	if o.BuyerID != actor.ID && !actor.IsAdmin() {
		return domain.Order{}, domain.NotFound("order")
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, actor domain.Principal) ([]domain.Order, error) {
	r := repos.NewOrderRepo(s.DB)
	if actor.IsAdmin() {
		return r.ListAll(ctx)
	}
	return r.ListByBuyer(ctx, actor.ID)
}

func (s *OrderService) Get(ctx context.Context, actor domain.Principal, id string) (domain.Order, error) {
	return s.owned(ctx, actor, id)
}

// UpdateStatus is the admin path for moving an order along; the buyer is told.
func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.Principal, id string, status domain.OrderStatus) (domain.Order, error) {
	if !actor.IsAdmin() {
		if _, err := s.owned(ctx, actor, id); err != nil {
			return domain.Order{}, err
		}
		return domain.Order{}, domain.Forbidden("Only admins can change order status.")
	}
	if !status.Valid() {
		return domain.Order{}, domain.Validation("status", "Must be one of: pending paid shipped.")
	}
	var out domain.Order
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		if err := orders.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		o, err := orders.Get(ctx, id)
		if err != nil {
			return err
		}
		out = o
		return Emit(ctx, tx, o.BuyerID, msgOrderStatus(o.ID, o.Status))
	})
	return out, err
}

func (s *OrderService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		return repos.NewOrderRepo(tx).Delete(ctx, id)
	})
}

// Invoices lists the caller's paid orders with their payment details.
func (s *OrderService) Invoices(ctx context.Context, actor domain.Principal) ([]repos.InvoiceRow, error) {
	return repos.NewOrderRepo(s.DB).Invoices(ctx, actor.ID)
}

type History struct {
	Purchases []repos.OrderHistoryRow `json:"purchases"`
	Sales     []repos.OrderHistoryRow `json:"sales"`
}

// History returns what the caller bought and what was bought from them, newest first.
func (s *OrderService) History(ctx context.Context, actor domain.Principal) (History, error) {
	r := repos.NewOrderRepo(s.DB)
	purchases, err := r.Purchases(ctx, actor.ID)
	if err != nil {
		return History{}, err
	}
	sales, err := r.Sales(ctx, actor.ID)
	if err != nil {
		return History{}, err
	}
	return History{Purchases: purchases, Sales: sales}, nil
}

type SalesSummary struct {
	TotalSalesCount int             `json:"total_sales_count"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	SalesHistory    []repos.SaleRow `json:"sales_history"`
}

// Sales summarizes paid orders for the caller's books.
func (s *OrderService) Sales(ctx context.Context, actor domain.Principal) (SalesSummary, error) {
	if !actor.CanSell() {
		return SalesSummary{}, domain.Forbidden("Access denied. Seller role required.")
	}
	rows, err := repos.NewOrderRepo(s.DB).PaidSales(ctx, actor.ID)
	if err != nil {
		return SalesSummary{}, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Price)
	}
	return SalesSummary{TotalSalesCount: len(rows), TotalRevenue: total, SalesHistory: rows}, nil
}

// ---------- Transactions (read-only) ----------

func (s *OrderService) Transactions(ctx context.Context, actor domain.Principal) ([]domain.Transaction, error) {
	r := repos.NewTransactionRepo(s.DB)
	if actor.IsAdmin() {
		return r.ListAll(ctx)
	}
	return r.ListByBuyer(ctx, actor.ID)
}

func (s *OrderService) Transaction(ctx context.Context, actor domain.Principal, id string) (domain.Transaction, error) {
	r := repos.NewTransactionRepo(s.DB)
	if !actor.IsAdmin() {
		buyer, err := r.BuyerOf(ctx, id)
		if err != nil {
			return domain.Transaction{}, err
		}
		if buyer != actor.ID {
			return domain.Transaction{}, domain.NotFound("transaction")
		}
	}
	return r.Get(ctx, id)
}
