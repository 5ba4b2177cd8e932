package handlers

import (
	"github.com/gofiber/fiber/v2"

	"autobridge/internal/domain"
	"autobridge/internal/httperr"
	applog "autobridge/internal/log"
	"autobridge/internal/services"
	"autobridge/internal/session"
)

// AttachIdentity verifies the session cookie when present and stores the
// identity in Locals. Verification failures leave the request anonymous.
func AttachIdentity(sessions *session.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Cookies(session.CookieName); token != "" {
			if ident, err := sessions.Verify(token); err == nil {
				c.Locals("identity", ident)
			}
		}
		return c.Next()
	}
}

func identityFrom(c *fiber.Ctx) (domain.Identity, bool) {
	ident, ok := c.Locals("identity").(domain.Identity)
	return ident, ok
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := identityFrom(c); !ok {
			return fail(c, "access.denied.user", httperr.ErrUnauthorized)
		}
		return c.Next()
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with
// 403. The role is re-read from the users table so a demoted admin loses
// access without waiting out the token.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, ok := identityFrom(c)
		if !ok {
			return fail(c, "access.denied.admin", httperr.ErrUnauthorized)
		}
		u, err := auth.CurrentUser(ident)
		if err != nil || u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": ident.ID})
			return fail(c, "access.denied.admin", httperr.ErrForbidden)
		}
		c.Locals("user", u)
		return c.Next()
	}
}
