package handlers

import (
	"github.com/gofiber/fiber/v2"

	"autobridge/internal/captcha"
	"autobridge/internal/httperr"
	applog "autobridge/internal/log"
	"autobridge/internal/services"
	"autobridge/internal/session"
	"autobridge/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService

	// Captcha gates registration when CaptchaRequired is set. A nil
	// verifier with the gate on is an operator error surfaced as 500.
	Captcha         *captcha.Verifier
	CaptchaRequired bool
}

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(session.TTL.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

type registerBody struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Name         *string `json:"name"`
	CaptchaToken string  `json:"captchaToken"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body registerBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, "auth.register", httperr.Validation("invalid json"))
	}

	if h.CaptchaRequired {
		if h.Captcha == nil || h.Captcha.Secret == "" {
			applog.Error(c, "auth.register.captcha.misconfigured", nil, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(httperr.ErrorResponse{Error: "captcha is not configured"})
		}
		if body.CaptchaToken == "" {
			return fail(c, "auth.register", httperr.Validation("captcha required"))
		}
		if err := h.Captcha.Verify(body.CaptchaToken, c.IP()); err != nil {
			applog.Security(c, "auth.register.captcha.fail", map[string]any{"err": err.Error()})
			return fail(c, "auth.register", httperr.Validation("captcha verification failed"))
		}
	}

	email, ok := validate.Email(body.Email)
	if !ok {
		return fail(c, "auth.register", httperr.Validation("invalid email"))
	}
	if !validate.Password(body.Password) {
		return fail(c, "auth.register", httperr.Validation("password must be at least 6 characters"))
	}

	u, token, err := h.Auth.Register(email, body.Password, body.Name)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	setSessionCookie(c, token)
	applog.Audit(c, "auth.register.success", map[string]any{"email": email})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u})
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, "auth.login", httperr.ErrBadCreds)
	}
	u, token, err := h.Auth.Login(body.Email, body.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": body.Email})
		return fail(c, "auth.login", err)
	}
	setSessionCookie(c, token)
	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"ok": true})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearSessionCookie(c)
	applog.Audit(c, "auth.logout", nil)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"ok": true, "user": nil})
}

// GET /auth/me — never cached; any verification failure is anonymous.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	ident, ok := identityFrom(c)
	if !ok {
		return c.JSON(fiber.Map{"user": nil})
	}
	u, err := h.Auth.CurrentUser(ident)
	if err != nil {
		return c.JSON(fiber.Map{"user": nil})
	}
	return c.JSON(fiber.Map{"user": u})
}
