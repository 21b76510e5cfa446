package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yanex66/vouchly/internal/auth"
	"github.com/yanex66/vouchly/internal/middleware"
)

// SetupRoutes mounts the public, user and admin API on app.
func SetupRoutes(app *fiber.App, h *Handler, admin *AdminHandler, issuer *auth.Issuer, admins middleware.AdminChecker) {
	app.Get("/health", h.Health)

	// Affiliate redirect
	app.Get("/buy/:slug", middleware.OptionalAuth(issuer), h.Buy)

	api := app.Group("/api")

	// Catalog
	api.Get("/home", h.Home)
	api.Get("/categories", h.Categories)
	api.Get("/categories/:slug", h.CategoryDetail)
	api.Get("/search", h.Search)
	api.Get("/items/:slug", middleware.OptionalAuth(issuer), h.ItemDetail)
	api.Get("/pages/:name", h.Page)

	// Accounts
	api.Get("/register", h.RegisterForm)
	api.Post("/register", h.Register)
	api.Post("/login", h.Login)

	// Authenticated user routes
	requireUser := middleware.JWTAuth(issuer)
	notBanned := middleware.BanCheck(admins)
	api.Post("/items/:slug/reviews", requireUser, notBanned, h.AddReview)
	api.Delete("/reviews/:id", requireUser, notBanned, h.DeleteReview)
	api.Get("/dashboard", requireUser, notBanned, h.Dashboard)
	api.Put("/profile", requireUser, notBanned, h.UpdateProfile)
	api.Get("/transactions", requireUser, notBanned, h.GetTransactions)
	api.Get("/referrals", requireUser, notBanned, h.GetReferrals)
	api.Post("/redeem", requireUser, notBanned, h.Redeem)
	api.Get("/payout/request", requireUser, notBanned, h.PayoutForm)
	api.Post("/payout/request", requireUser, notBanned, h.RequestPayout)

	// Admin panel routes (requires JWT auth + admin check)
	adm := app.Group("/api/admin", requireUser, middleware.AdminAuth(admins))

	// Admin - Payouts
	adm.Get("/payouts", admin.ListPayouts)
	adm.Put("/payouts/:id/status", admin.UpdatePayoutStatus)

	// Admin - Reviews
	adm.Post("/reviews/:id/feature", admin.FeatureReview)
	adm.Delete("/reviews/:id/feature", admin.UnfeatureReview)

	// Admin - Referrals
	adm.Post("/item-referrals/:id/sales", admin.RecordSale)

	// Admin - Catalog
	adm.Post("/categories", admin.CreateCategory)
	adm.Post("/items", admin.CreateItem)

	// Admin - Settings
	adm.Get("/settings", admin.GetSettings)
	adm.Put("/settings", admin.SetSetting)

	// Admin - Ban management
	adm.Get("/bans", admin.ListBans)
	adm.Post("/users/:user_id/ban", admin.BanUser)
	adm.Delete("/users/:user_id/ban", admin.UnbanUser)

	// Admin - Admins
	adm.Post("/admins", admin.GrantAdmin)

	// Admin - Logs
	adm.Get("/logs", admin.GetLogs)
}
