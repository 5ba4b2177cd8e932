package handlers

import (
	"github.com/gofiber/fiber/v2"

	"autobridge/internal/httperr"
	applog "autobridge/internal/log"
)

// fail maps a domain error onto the JSON error surface. Internals are
// logged, never exposed.
func fail(c *fiber.Ctx, action string, err error) error {
	status := httperr.Status(err)
	if status >= 500 {
		applog.Error(c, action, err, nil)
	}
	return c.Status(status).JSON(httperr.Body(err))
}
