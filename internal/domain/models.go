package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

type BookStatus string

const (
	BookPending   BookStatus = "pending"
	BookAvailable BookStatus = "available"
	BookSold      BookStatus = "sold"
)

func (s BookStatus) Valid() bool {
	switch s {
	case BookPending, BookAvailable, BookSold:
		return true
	}
	return false
}

type Book struct {
	ID            string          `db:"id" json:"id"`
	Title         string          `db:"title" json:"title"`
	Author        string          `db:"author" json:"author"`
	CategoryID    *string         `db:"category_id" json:"category"`
	CategoryName  *string         `db:"category_name" json:"category_name"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Condition     Condition       `db:"condition" json:"condition"`
	Description   string          `db:"description" json:"description"`
	Image         *string         `db:"image" json:"image"`
	SellerID      string          `db:"seller_id" json:"seller"`
	SellerName    string          `db:"seller_name" json:"seller_name"`
	SellerContact *string         `db:"seller_contact" json:"seller_contact"`
	IsApproved    bool            `db:"is_approved" json:"is_approved"`
	Status        BookStatus      `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Visible reports whether ordinary buyers may see the book.
func (b Book) Visible() bool { return b.IsApproved && b.Status != BookPending }

// Normalize reconciles the approval flag with the listing status.
// Every operation that writes a book calls it before persisting.
func (b *Book) Normalize() {
	switch {
	case b.IsApproved && b.Status == BookPending:
		b.Status = BookAvailable
	case !b.IsApproved && b.Status == BookAvailable:
		b.Status = BookPending
	}
}

// ResetApproval sends the book back to review.
func (b *Book) ResetApproval() {
	b.IsApproved = false
	b.Status = BookPending
}

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderShipped OrderStatus = "shipped"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped:
		return true
	}
	return false
}

type Order struct {
	ID        string      `db:"id" json:"id"`
	BookID    string      `db:"book_id" json:"book"`
	BuyerID   string      `db:"buyer_id" json:"buyer"`
	Status    OrderStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

type TxStatus string

const (
	TxPending TxStatus = "pending"
	TxSuccess TxStatus = "success"
	TxFailed  TxStatus = "failed"
)

type Transaction struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	RefID     *string         `db:"ref_id" json:"ref_id"`
	Status    TxStatus        `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Favorite struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user"`
	BookID    string    `db:"book_id" json:"book"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type TicketSubject string

const (
	SubjectTechnical TicketSubject = "technical"
	SubjectPayment   TicketSubject = "payment"
	SubjectReport    TicketSubject = "report"
	SubjectOther     TicketSubject = "other"
)

// Label is the human readable subject used in notifications.
func (s TicketSubject) Label() string {
	switch s {
	case SubjectTechnical:
		return "Technical Issue"
	case SubjectPayment:
		return "Payment Problem"
	case SubjectReport:
		return "Report User/Book"
	}
	return "Other"
}

type SupportTicket struct {
	ID         string        `db:"id"`
	UserID     string        `db:"user_id"`
	Username   string        `db:"username"`
	Subject    TicketSubject `db:"subject"`
	Message    string        `db:"message"`
	AdminReply *string       `db:"admin_reply"`
	IsResolved bool          `db:"is_resolved"`
	CreatedAt  time.Time     `db:"created_at"`
}
