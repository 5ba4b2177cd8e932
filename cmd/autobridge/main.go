package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"autobridge/internal/blob"
	"autobridge/internal/config"
	"autobridge/internal/http/handlers"
	applog "autobridge/internal/log"
	"autobridge/internal/repos"
	"autobridge/internal/session"
)

func main() {
	cfg := config.Load()

	if cfg.AuthSecret == "" {
		log.Fatal("AUTH_SECRET is required")
	}

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repos.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal(err)
	}

	blobs, err := blob.NewS3Store(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	sessions := session.New(cfg.AuthSecret)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		},
	})
	// Global body size guard; the avatar route applies its own 2 MB cap.
	app.Server().MaxRequestBodySize = 4 << 20

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	deps := handlers.NewDeps(db, cfg, sessions, blobs)
	handlers.Register(app, deps)

	log.Fatal(app.Listen(":" + cfg.Port))
}
