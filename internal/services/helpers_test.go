package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bookmarket/internal/domain"
	"bookmarket/internal/lock"
	"bookmarket/internal/repos"
	"bookmarket/internal/services"
	"bookmarket/internal/storage"
)

const testPassword = "password123"

type fixture struct {
	db *sqlx.DB

	admin, seller, buyer, other domain.Principal

	catalog  *services.CatalogService
	orders   *services.OrderService
	notes    *services.NotificationService
	support  *services.SupportService
	favs     *services.FavoriteService
	users    *services.UserService
	reports  *services.ReportService
	mediaDir string
}

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func addUser(t *testing.T, db *sqlx.DB, username string, role domain.Role) domain.Principal {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		Phone:     "09" + phoneSuffix(username),
		Hash:      string(hash),
		Role:      role,
		IsStaff:   role == domain.RoleAdmin,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repos.NewUserRepo(db).Create(context.Background(), u))
	return u.Principal()
}

// phoneSuffix derives a stable 9-digit suffix from the username.
func phoneSuffix(s string) string {
	var n uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		n = (n ^ uint32(s[i])) * 16777619
	}
	out := make([]byte, 9)
	for i := range out {
		out[i] = byte('0' + n%10)
		n /= 10
	}
	return string(out)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memdb(t)
	media := t.TempDir()
	store, err := storage.NewLocalStore(media)
	require.NoError(t, err)
	return &fixture{
		db:       db,
		admin:    addUser(t, db, "admin", domain.RoleAdmin),
		seller:   addUser(t, db, "seller", domain.RoleSeller),
		buyer:    addUser(t, db, "buyer", domain.RoleBuyer),
		other:    addUser(t, db, "other", domain.RoleBuyer),
		catalog:  services.NewCatalogService(db, store),
		orders:   services.NewOrderService(db, lock.NewMemory()),
		notes:    services.NewNotificationService(db),
		support:  services.NewSupportService(db),
		favs:     services.NewFavoriteService(db),
		users:    services.NewUserService(db),
		reports:  services.NewReportService(db),
		mediaDir: media,
	}
}

func bookInput(title string, price int64) services.BookInput {
	return services.BookInput{
		Title:     title,
		Author:    "Author",
		Price:     decimal.NewFromInt(price),
		Condition: domain.ConditionUsed,
	}
}

// listedBook creates a seller book and approves it.
func (f *fixture) listedBook(t *testing.T, title string, price int64) domain.Book {
	t.Helper()
	ctx := context.Background()
	b, err := f.catalog.CreateForSeller(ctx, f.seller, bookInput(title, price))
	require.NoError(t, err)
	b, err = f.catalog.Approve(ctx, f.admin, b.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) count(t *testing.T, q string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, q, args...))
	return n
}

func (f *fixture) inbox(t *testing.T, who domain.Principal) []domain.Notification {
	t.Helper()
	ns, err := f.notes.List(context.Background(), who)
	require.NoError(t, err)
	return ns
}
