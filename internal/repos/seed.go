package repos

import (
	"context"
	"time"

	"bookmarket/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

// SeedDemo inserts demo accounts, categories and books into an empty database.
// It is a no-op once any user exists.
func SeedDemo(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := sqlx.GetContext(ctx, db, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	return WithTx(ctx, db, func(tx *sqlx.Tx) error {
		users := NewUserRepo(tx)
		accounts := []domain.User{
			{Username: "admin", Email: "admin@bookmarket.local", Phone: "09000000001", Role: domain.RoleAdmin, IsStaff: true},
			{Username: "seller", Email: "seller@bookmarket.local", Phone: "09000000002", Role: domain.RoleSeller},
			{Username: "buyer", Email: "buyer@bookmarket.local", Phone: "09000000003", Role: domain.RoleBuyer},
		}
		var sellerID string
		for i := range accounts {
			u := &accounts[i]
			u.ID = uuid.NewString()
			u.Hash = string(hash)
			u.IsActive = true
			u.CreatedAt = now
			if err := users.Create(ctx, u); err != nil {
				return err
			}
			if u.Role == domain.RoleSeller {
				sellerID = u.ID
			}
		}

		cats := NewCategoryRepo(tx)
		fiction := domain.Category{ID: uuid.NewString(), Name: "Fiction"}
		for _, c := range []domain.Category{fiction, {ID: uuid.NewString(), Name: "Science"}, {ID: uuid.NewString(), Name: "History"}} {
			if err := cats.Create(ctx, c); err != nil {
				return err
			}
		}

		books := NewBookRepo(tx)
		for i, title := range []string{"Dune", "Foundation"} {
			b := &domain.Book{
				ID:         uuid.NewString(),
				Title:      title,
				Author:     "Demo Author",
				CategoryID: &fiction.ID,
				Price:      decimal.NewFromInt(int64(20 + i*5)),
				Condition:  domain.ConditionUsed,
				SellerID:   sellerID,
				IsApproved: i == 0,
				Status:     domain.BookPending,
				CreatedAt:  now,
			}
			b.Normalize()
			if err := books.Create(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
}
