package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"

	"bookmarket/internal/auth"
	"bookmarket/internal/config"
	"bookmarket/internal/lock"
	applog "bookmarket/internal/log"
	"bookmarket/internal/services"
	"bookmarket/internal/storage"
)

// Limits throttles the credential endpoints per client IP.
type Limits struct {
	Login  int
	Reset  int
	Window time.Duration
}

var DefaultLimits = Limits{Login: 5, Reset: 5, Window: 10 * time.Minute}

type Deps struct {
	AuthSvc *services.AuthService

	AuthHandler         *AuthHandler
	ProfileHandler      *ProfileHandler
	AdminHandler        *AdminHandler
	BookHandler         *BookHandler
	InventoryHandler    *InventoryHandler
	CategoryHandler     *CategoryHandler
	OrderHandler        *OrderHandler
	NotificationHandler *NotificationHandler
	FavoriteHandler     *FavoriteHandler
	SupportHandler      *SupportHandler

	Limits Limits
}

func NewDeps(db *sqlx.DB, cfg config.Config, tokens *auth.Tokens, locks lock.Locker, covers storage.ObjectStore) *Deps {
	authSvc := services.NewAuthService(db, tokens)
	userSvc := services.NewUserService(db)
	catalogSvc := services.NewCatalogService(db, covers)
	orderSvc := services.NewOrderService(db, locks)

	return &Deps{
		AuthSvc:             authSvc,
		AuthHandler:         &AuthHandler{Auth: authSvc, ExposeResetCode: cfg.ExposeResetCode},
		ProfileHandler:      &ProfileHandler{Users: userSvc, Orders: orderSvc},
		AdminHandler:        &AdminHandler{Users: userSvc, Reports: services.NewReportService(db)},
		BookHandler:         &BookHandler{Catalog: catalogSvc},
		InventoryHandler:    &InventoryHandler{Catalog: catalogSvc},
		CategoryHandler:     &CategoryHandler{Catalog: catalogSvc},
		OrderHandler:        &OrderHandler{Orders: orderSvc},
		NotificationHandler: &NotificationHandler{Notes: services.NewNotificationService(db)},
		FavoriteHandler:     &FavoriteHandler{Favs: services.NewFavoriteService(db)},
		SupportHandler:      &SupportHandler{Support: services.NewSupportService(db)},
		Limits:              DefaultLimits,
	}
}

func throttle(max int, window time.Duration, action string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + action
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate."+action+".hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": "Too many attempts. Please try again later."})
		},
	})
}

// Routes mounts the JSON API under /api.
func (d *Deps) Routes(r fiber.Router) {
	api := r.Group("/api", Authenticate(d.AuthSvc))
	user := RequireUser()
	admin := RequireAdmin()

	// Identity
	api.Post("/register", d.AuthHandler.Register)
	api.Post("/token", throttle(d.Limits.Login, d.Limits.Window, "login"), d.AuthHandler.Token)
	resetLimit := throttle(d.Limits.Reset, d.Limits.Window, "reset")
	api.Post("/password-reset/request", resetLimit, d.AuthHandler.ResetRequest)
	api.Post("/password-reset/confirm", resetLimit, d.AuthHandler.ResetConfirm)

	api.Get("/profile", user, d.ProfileHandler.Get)
	api.Put("/profile", user, d.ProfileHandler.Update)
	api.Patch("/profile", user, d.ProfileHandler.Update)
	api.Get("/profile/history", user, d.ProfileHandler.History)
	api.Get("/profile/sales", user, d.ProfileHandler.Sales)

	// Admin
	api.Get("/admin-reports", admin, d.AdminHandler.Report)
	users := api.Group("/users", admin)
	users.Get("/", d.AdminHandler.ListUsers)
	users.Post("/", d.AdminHandler.CreateUser)
	users.Get("/:id", d.AdminHandler.GetUser)
	users.Put("/:id", d.AdminHandler.UpdateUser)
	users.Patch("/:id", d.AdminHandler.UpdateUser)
	users.Delete("/:id", d.AdminHandler.DeleteUser)
	users.Post("/:id/update-role", d.AdminHandler.UpdateRole)
	api.Post("/admin/books", admin, d.BookHandler.AdminCreate)

	// Catalog; fixed paths go before /:id
	api.Get("/books", d.BookHandler.List)
	api.Post("/books", d.BookHandler.Create)
	api.Get("/books/my-inventory", user, d.InventoryHandler.List)
	api.Post("/books/my-inventory", user, d.InventoryHandler.Add)
	api.Get("/books/:id", d.BookHandler.Detail)
	api.Put("/books/:id", user, d.BookHandler.Update)
	api.Patch("/books/:id", user, d.BookHandler.Update)
	api.Delete("/books/:id", user, d.BookHandler.Delete)
	api.Post("/books/:id/approve", admin, d.BookHandler.Approve)
	api.Post("/books/:id/reject", admin, d.BookHandler.Reject)
	api.Post("/books/:id/image", user, d.BookHandler.UploadCover)

	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/categories/:id", d.CategoryHandler.Get)
	api.Post("/categories", admin, d.CategoryHandler.Create)
	api.Put("/categories/:id", admin, d.CategoryHandler.Update)
	api.Patch("/categories/:id", admin, d.CategoryHandler.Update)
	api.Delete("/categories/:id", admin, d.CategoryHandler.Delete)

	// Orders
	api.Get("/orders", user, d.OrderHandler.List)
	api.Post("/orders", user, d.OrderHandler.Place)
	api.Get("/orders/my-invoices", user, d.OrderHandler.Invoices)
	api.Get("/orders/:id", user, d.OrderHandler.View)
	api.Patch("/orders/:id", user, d.OrderHandler.UpdateStatus)
	api.Delete("/orders/:id", user, d.OrderHandler.Delete)
	api.Post("/orders/:id/pay", user, d.OrderHandler.Pay)
	api.Get("/transactions", user, d.OrderHandler.Transactions)
	api.Get("/transactions/:id", user, d.OrderHandler.Transaction)

	// Notifications
	api.Get("/notifications", user, d.NotificationHandler.List)
	api.Post("/notifications", admin, d.NotificationHandler.Create)
	api.Get("/notifications/:id", user, d.NotificationHandler.Get)
	api.Delete("/notifications/:id", admin, d.NotificationHandler.Delete)
	api.Post("/notifications/:id/mark-as-read", user, d.NotificationHandler.MarkRead)

	// Favorites
	api.Get("/favorites", user, d.FavoriteHandler.List)
	api.Post("/favorites", user, d.FavoriteHandler.Save)
	api.Get("/favorites/:id", user, d.FavoriteHandler.Get)
	api.Delete("/favorites/:id", user, d.FavoriteHandler.Unsave)

	// Support
	api.Get("/support-tickets", user, d.SupportHandler.List)
	api.Post("/support-tickets", user, d.SupportHandler.Open)
	api.Get("/support-tickets/:id", user, d.SupportHandler.Get)
	api.Patch("/support-tickets/:id", admin, d.SupportHandler.Patch)
	api.Delete("/support-tickets/:id", user, d.SupportHandler.Close)
	api.Post("/support-tickets/:id/reply", admin, d.SupportHandler.Reply)
}
