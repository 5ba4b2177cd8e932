package handlers

import (
	"github.com/gofiber/fiber/v2"

	"autobridge/internal/httperr"
	applog "autobridge/internal/log"
	"autobridge/internal/services"
	"autobridge/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /catalog/parts/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	items, err := h.Catalog.ListCategories()
	if err != nil {
		return fail(c, "catalog.categories.list", err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// POST /catalog/parts/categories — upsert-by-name; an existing name
// returns the existing category.
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, "catalog.categories.create", httperr.Validation("invalid json"))
	}
	name, ok := validate.Name(body.Name)
	if !ok {
		return fail(c, "catalog.categories.create", httperr.Validation("name is required"))
	}
	cat, err := h.Catalog.CreateCategory(name)
	if err != nil {
		return fail(c, "catalog.categories.create", err)
	}
	applog.Audit(c, "catalog.categories.create", map[string]any{"category_id": cat.ID, "name": cat.Name})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// DELETE /catalog/parts/categories?id= — detaches all parts first, then
// removes the category, atomically.
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("id"))
	if !ok {
		return fail(c, "catalog.categories.delete", httperr.Validation("id is required"))
	}
	if err := h.Catalog.DeleteCategory(id); err != nil {
		return fail(c, "catalog.categories.delete", err)
	}
	applog.Audit(c, "catalog.categories.delete", map[string]any{"category_id": id})
	return c.JSON(fiber.Map{"ok": true})
}
