package services

import (
	"context"
	"io"
	"strings"
	"time"

	"bookmarket/internal/domain"
	"bookmarket/internal/repos"
	"bookmarket/internal/storage"
	"bookmarket/internal/validate"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CatalogService owns books and categories and enforces the listing approval rules.
type CatalogService struct {
	DB     *sqlx.DB
	Covers storage.ObjectStore
}

func NewCatalogService(db *sqlx.DB, covers storage.ObjectStore) *CatalogService {
	return &CatalogService{DB: db, Covers: covers}
}

// BookInput is the payload for creating a book. Seller, IsApproved and Status
// are honored only on the admin path.
type BookInput struct {
	Title       string            `json:"title" validate:"required,max=255"`
	Author      string            `json:"author" validate:"required,max=255"`
	CategoryID  *string           `json:"category"`
	Price       decimal.Decimal   `json:"price"`
	Condition   domain.Condition  `json:"condition" validate:"required,oneof=new used"`
	Description string            `json:"description"`
	SellerID    string            `json:"seller"`
	IsApproved  bool              `json:"is_approved"`
	Status      domain.BookStatus `json:"status" validate:"omitempty,oneof=pending available sold"`
}

// BookPatch carries the fields a caller wants to change; nil means unchanged.
type BookPatch struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=255"`
	Author      *string            `json:"author" validate:"omitempty,min=1,max=255"`
	CategoryID  *string            `json:"category"`
	Price       *decimal.Decimal   `json:"price"`
	Condition   *domain.Condition  `json:"condition" validate:"omitempty,oneof=new used"`
	Description *string            `json:"description"`
	IsApproved  *bool              `json:"is_approved"`
	Status      *domain.BookStatus `json:"status" validate:"omitempty,oneof=pending available sold"`
}

func checkPrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return domain.Validation("price", "Ensure this value is greater than 0.")
	}
	return nil
}

func (s *CatalogService) checkCategory(ctx context.Context, db sqlx.ExtContext, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	if _, err := repos.NewCategoryRepo(db).Get(ctx, *id); err != nil {
		return nil, asField(err, "category", "Invalid category.")
	}
	return id, nil
}

func canManage(actor domain.Principal, b domain.Book) bool {
	return actor.IsAdmin() || b.SellerID == actor.ID
}

// ---------- Reads ----------

// ListBooks is the general listing: admins see everything, everyone else only visible books.
func (s *CatalogService) ListBooks(ctx context.Context, actor domain.Principal, f repos.BookFilter) ([]domain.Book, error) {
	f.VisibleOnly = !actor.IsAdmin()
	return repos.NewBookRepo(s.DB).List(ctx, f)
}

func (s *CatalogService) GetBook(ctx context.Context, actor domain.Principal, id string) (domain.Book, error) {
	b, err := repos.NewBookRepo(s.DB).Get(ctx, id)
	if err != nil {
		return b, err
	}
	if !b.Visible() && !canManage(actor, b) {
		return domain.Book{}, domain.NotFound("book")
	}
	return b, nil
}

// Inventory lists every book the seller owns, whatever its state.
func (s *CatalogService) Inventory(ctx context.Context, actor domain.Principal) ([]domain.Book, error) {
	if !actor.CanSell() {
		return nil, domain.Forbidden("Only sellers can access inventory.")
	}
	return repos.NewBookRepo(s.DB).ListBySeller(ctx, actor.ID)
}

// ---------- Writes ----------

// CreateForSeller adds a book to the caller's inventory. It always starts unapproved and pending.
func (s *CatalogService) CreateForSeller(ctx context.Context, actor domain.Principal, in BookInput) (domain.Book, error) {
	if !actor.CanSell() {
		return domain.Book{}, domain.Forbidden("Only sellers can access inventory.")
	}
	in.SellerID = actor.ID
	in.IsApproved = false
	in.Status = domain.BookPending
	return s.create(ctx, in)
}

// AdminCreate stores the book with the approval state the admin supplied.
func (s *CatalogService) AdminCreate(ctx context.Context, actor domain.Principal, in BookInput) (domain.Book, error) {
	if !actor.IsAdmin() {
		return domain.Book{}, domain.Forbidden("Only admins can create books here.")
	}
	if strings.TrimSpace(in.SellerID) == "" {
		return domain.Book{}, domain.Validation("seller", "This field is required.")
	}
	if in.Status == "" {
		in.Status = domain.BookPending
	}
	return s.create(ctx, in)
}

func (s *CatalogService) create(ctx context.Context, in BookInput) (domain.Book, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Book{}, err
	}
	if err := checkPrice(in.Price); err != nil {
		return domain.Book{}, err
	}
	var out domain.Book
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if _, err := repos.NewUserRepo(tx).ByID(ctx, in.SellerID); err != nil {
			return asField(err, "seller", "Invalid seller.")
		}
		cat, err := s.checkCategory(ctx, tx, in.CategoryID)
		if err != nil {
			return err
		}
		b := &domain.Book{
			ID:          uuid.NewString(),
			Title:       strings.TrimSpace(in.Title),
			Author:      strings.TrimSpace(in.Author),
			CategoryID:  cat,
			Price:       in.Price.Round(2),
			Condition:   in.Condition,
			Description: in.Description,
			SellerID:    in.SellerID,
			IsApproved:  in.IsApproved,
			Status:      in.Status,
			CreatedAt:   time.Now().UTC(),
		}
		b.Normalize()
		books := repos.NewBookRepo(tx)
		if err := books.Create(ctx, b); err != nil {
			return err
		}
		out, err = books.Get(ctx, b.ID)
		return err
	})
	return out, err
}

// Update applies a patch. A seller's edit sends the book back to review;
// an admin's edit keeps the approval state, normalized.
func (s *CatalogService) Update(ctx context.Context, actor domain.Principal, id string, p BookPatch) (domain.Book, error) {
	if err := validate.Struct(p); err != nil {
		return domain.Book{}, err
	}
	if p.Price != nil {
		if err := checkPrice(*p.Price); err != nil {
			return domain.Book{}, err
		}
	}
	if p.Status != nil && *p.Status == domain.BookSold {
		return domain.Book{}, domain.Validation("status", "A book is marked sold only by a purchase.")
	}
	var out domain.Book
	err := s.mutate(ctx, actor, id, func(tx *sqlx.Tx, b *domain.Book) error {
		if p.Title != nil {
			b.Title = strings.TrimSpace(*p.Title)
		}
		if p.Author != nil {
			b.Author = strings.TrimSpace(*p.Author)
		}
		if p.CategoryID != nil {
			cat, err := s.checkCategory(ctx, tx, p.CategoryID)
			if err != nil {
				return err
			}
			b.CategoryID = cat
		}
		if p.Price != nil {
			b.Price = p.Price.Round(2)
		}
		if p.Condition != nil {
			b.Condition = *p.Condition
		}
		if p.Description != nil {
			b.Description = *p.Description
		}
		if actor.IsAdmin() {
			if p.IsApproved != nil {
				b.IsApproved = *p.IsApproved
			}
			if p.Status != nil {
				b.Status = *p.Status
			}
		}
		return nil
	}, &out)
	return out, err
}

// mutate loads the book inside a transaction, lets fn change it, applies the
// edit rules and persists it.
func (s *CatalogService) mutate(ctx context.Context, actor domain.Principal, id string, fn func(tx *sqlx.Tx, b *domain.Book) error, out *domain.Book) error {
	return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		books := repos.NewBookRepo(tx)
		b, err := books.Get(ctx, id)
		if err != nil {
			return err
		}
		if !canManage(actor, b) {
			if !b.Visible() {
				return domain.NotFound("book")
			}
			return domain.Forbidden("You can only edit your own books.")
		}
		if err := fn(tx, &b); err != nil {
			return err
		}
		if !actor.IsAdmin() {
			b.ResetApproval()
		}
		b.Normalize()
		if err := books.Save(ctx, &b); err != nil {
			return err
		}
		*out, err = books.Get(ctx, id)
		return err
	})
}

func (s *CatalogService) DeleteBook(ctx context.Context, actor domain.Principal, id string) error {
	return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		books := repos.NewBookRepo(tx)
		b, err := books.Get(ctx, id)
		if err != nil {
			return err
		}
		if !canManage(actor, b) {
			if !b.Visible() {
				return domain.NotFound("book")
			}
			return domain.Forbidden("You can only delete your own books.")
		}
		return books.Delete(ctx, id)
	})
}

// Approve makes the book visible to buyers and tells the seller.
func (s *CatalogService) Approve(ctx context.Context, actor domain.Principal, id string) (domain.Book, error) {
	return s.review(ctx, actor, id, func(b *domain.Book) string {
		b.IsApproved = true
		b.Normalize()
		return msgBookApproved(b.Title)
	})
}

// Reject always leaves the book unapproved and pending, even if it was available.
func (s *CatalogService) Reject(ctx context.Context, actor domain.Principal, id string) (domain.Book, error) {
	return s.review(ctx, actor, id, func(b *domain.Book) string {
		b.ResetApproval()
		return msgBookRejected(b.Title)
	})
}

func (s *CatalogService) review(ctx context.Context, actor domain.Principal, id string, decide func(b *domain.Book) string) (domain.Book, error) {
	if !actor.IsAdmin() {
		return domain.Book{}, domain.Forbidden("Only admins can review books.")
	}
	var out domain.Book
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		books := repos.NewBookRepo(tx)
		b, err := books.Get(ctx, id)
		if err != nil {
			return err
		}
		msg := decide(&b)
		if err := books.Save(ctx, &b); err != nil {
			return err
		}
		if err := Emit(ctx, tx, b.SellerID, msg); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// SetCover stores a new cover image. It counts as an edit of the book.
func (s *CatalogService) SetCover(ctx context.Context, actor domain.Principal, id string, r io.Reader) (domain.Book, error) {
	b, err := repos.NewBookRepo(s.DB).Get(ctx, id)
	if err != nil {
		return b, err
	}
	if !canManage(actor, b) {
		if !b.Visible() {
			return domain.Book{}, domain.NotFound("book")
		}
		return domain.Book{}, domain.Forbidden("You can only edit your own books.")
	}
	cover, err := storage.ProcessCover(id, r)
	if err != nil {
		return domain.Book{}, domain.Validation("image", "Upload a valid image.")
	}
	if err := s.Covers.Put(ctx, cover.Key, cover.Reader(), cover.Size(), "image/jpeg"); err != nil {
		return domain.Book{}, err
	}
	url := s.Covers.URL(cover.Key)

	var out domain.Book
	err = s.mutate(ctx, actor, id, func(_ *sqlx.Tx, b *domain.Book) error {
		b.Image = &url
		return nil
	}, &out)
	if err != nil {
		_ = s.Covers.Delete(context.WithoutCancel(ctx), cover.Key)
	}
	return out, err
}

// ---------- Categories ----------

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return repos.NewCategoryRepo(s.DB).List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	return repos.NewCategoryRepo(s.DB).Get(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.Principal, in CategoryInput) (domain.Category, error) {
	if !actor.IsAdmin() {
		return domain.Category{}, domain.Forbidden("Only admins can manage categories.")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return domain.Category{}, err
	}
	c := domain.Category{ID: uuid.NewString(), Name: in.Name}
	return c, repos.NewCategoryRepo(s.DB).Create(ctx, c)
}

func (s *CatalogService) RenameCategory(ctx context.Context, actor domain.Principal, id string, in CategoryInput) (domain.Category, error) {
	if !actor.IsAdmin() {
		return domain.Category{}, domain.Forbidden("Only admins can manage categories.")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return domain.Category{}, err
	}
	if err := repos.NewCategoryRepo(s.DB).Rename(ctx, id, in.Name); err != nil {
		return domain.Category{}, err
	}
	return domain.Category{ID: id, Name: in.Name}, nil
}

// DeleteCategory removes the category; its books stay, uncategorized.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor domain.Principal, id string) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("Only admins can manage categories.")
	}
	return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		return repos.NewCategoryRepo(tx).Delete(ctx, id)
	})
}
