package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "autobridge/internal/log"
)

// Register mounts the API surface. Reads are public; catalog mutations
// are admin-only.
func Register(app *fiber.App, d *Deps) {
	app.Use(AttachIdentity(d.Sessions))

	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.auth.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, retry later"})
		},
	})

	auth := app.Group("/auth")
	auth.Post("/register", authLimiter, d.Auth.Register)
	auth.Post("/login", authLimiter, d.Auth.Login)
	auth.Post("/logout", d.Auth.Logout)
	auth.Get("/me", d.Auth.Me)

	admin := RequireAdmin(d.AuthSvc)

	catalog := app.Group("/catalog")
	catalog.Get("/parts/categories", d.Categories.List)
	catalog.Post("/parts/categories", admin, d.Categories.Create)
	catalog.Delete("/parts/categories", admin, d.Categories.Delete)

	catalog.Get("/parts", d.Parts.List)
	catalog.Post("/parts", admin, d.Parts.Create)
	catalog.Delete("/parts", admin, d.Parts.DeleteByBody)
	catalog.Get("/parts/:id", d.Parts.Get)
	catalog.Patch("/parts/:id", admin, d.Parts.Patch)
	catalog.Delete("/parts/:id", admin, d.Parts.Delete)

	app.Post("/account/avatar", RequireUser(), d.Account.UploadAvatar)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
}
