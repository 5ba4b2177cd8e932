package handlers

import (
	"github.com/gofiber/fiber/v2"

	"autobridge/internal/httperr"
	applog "autobridge/internal/log"
	"autobridge/internal/services"
)

type AccountHandler struct {
	Account *services.AccountService
}

// POST /account/avatar — multipart "file", image MIME only, 2 MB cap.
func (h *AccountHandler) UploadAvatar(c *fiber.Ctx) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, "account.avatar", httperr.ErrUnauthorized)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, "account.avatar", httperr.Validation("no file"))
	}

	url, err := h.Account.UpdateAvatar(c.Context(), ident.ID, fh)
	if err != nil {
		return fail(c, "account.avatar", err)
	}
	applog.Audit(c, "account.avatar.update", map[string]any{"user_id": ident.ID})
	return c.JSON(fiber.Map{"url": url, "ok": true})
}
