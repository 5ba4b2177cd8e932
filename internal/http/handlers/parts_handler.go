package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"autobridge/internal/httperr"
	applog "autobridge/internal/log"
	"autobridge/internal/repos"
	"autobridge/internal/services"
	"autobridge/internal/validate"
)

type PartsHandler struct {
	Catalog *services.CatalogService
}

// GET /catalog/parts?q=&status=&category=
func (h *PartsHandler) List(c *fiber.Ctx) error {
	f := repos.PartFilter{Q: validate.Q(c.Query("q"))}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		s, ok := validate.Status(status)
		if !ok {
			return fail(c, "catalog.parts.list", httperr.Validation("invalid status filter"))
		}
		f.Status = s
	}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" && cat != "all" {
		id, ok := validate.ID(cat)
		if !ok {
			return fail(c, "catalog.parts.list", httperr.Validation("invalid category filter"))
		}
		f.CategoryID = id
	}

	items, err := h.Catalog.ListParts(f)
	if err != nil {
		return fail(c, "catalog.parts.list", err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// GET /catalog/parts/:id
func (h *PartsHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "catalog.parts.get", httperr.ErrNotFound)
	}
	item, err := h.Catalog.GetPart(id)
	if err != nil {
		return fail(c, "catalog.parts.get", err)
	}
	return c.JSON(fiber.Map{"item": item})
}

type createPartBody struct {
	Name            string       `json:"name"`
	PartNumber      *string      `json:"partNumber"`
	CategoryID      *string      `json:"categoryId"`
	NewCategoryName *string      `json:"newCategoryName"`
	ImageURL        *string      `json:"imageUrl"`
	Price           *json.Number `json:"price"`
	Stock           *json.Number `json:"stock"`
	Status          string       `json:"status"`
	Description     *string      `json:"description"`
}

// POST /catalog/parts — accepts JSON or multipart/form-data (with an
// optional "file" image).
func (h *PartsHandler) Create(c *fiber.Ctx) error {
	var (
		body createPartBody
		file *multipart.FileHeader
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		body = createPartBody{
			Name:   c.FormValue("name"),
			Status: c.FormValue("status"),
		}
		if v := c.FormValue("partNumber"); v != "" {
			body.PartNumber = &v
		}
		if v := c.FormValue("categoryId"); v != "" {
			body.CategoryID = &v
		}
		if v := c.FormValue("newCategoryName"); v != "" {
			body.NewCategoryName = &v
		}
		if v := c.FormValue("description"); v != "" {
			body.Description = &v
		}
		if v := c.FormValue("price"); v != "" {
			n := json.Number(v)
			body.Price = &n
		}
		if v := c.FormValue("stock"); v != "" {
			n := json.Number(v)
			body.Stock = &n
		}
		if fh, err := c.FormFile("file"); err == nil && fh.Size > 0 {
			file = fh
		}
	} else if err := c.BodyParser(&body); err != nil {
		return fail(c, "catalog.parts.create", httperr.Validation("invalid json"))
	}

	in := services.PartInput{
		PartNumber:  body.PartNumber,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	}

	name, ok := validate.Name(body.Name)
	if !ok {
		return fail(c, "catalog.parts.create", httperr.Validation("name is required"))
	}
	in.Name = name

	if body.Price == nil {
		return fail(c, "catalog.parts.create", httperr.Validation("price is required"))
	}
	price, ok := validate.Price(body.Price.String())
	if !ok {
		return fail(c, "catalog.parts.create", httperr.Validation("price must be a non-negative number"))
	}
	in.Price = price

	status, ok := validate.Status(body.Status)
	if !ok {
		return fail(c, "catalog.parts.create", httperr.Validation("status must be IN_STOCK or ON_ORDER"))
	}
	in.Status = status

	if body.Stock != nil {
		stock, err := strconv.Atoi(body.Stock.String())
		if err != nil || !validate.Stock(stock) {
			return fail(c, "catalog.parts.create", httperr.Validation("stock must be a non-negative integer"))
		}
		in.Stock = stock
	}

	if body.CategoryID != nil {
		id, ok := validate.ID(*body.CategoryID)
		if !ok {
			return fail(c, "catalog.parts.create", httperr.Validation("invalid categoryId"))
		}
		in.CategoryID = id
	}
	if body.NewCategoryName != nil {
		name, ok := validate.Name(*body.NewCategoryName)
		if !ok {
			return fail(c, "catalog.parts.create", httperr.Validation("empty category name"))
		}
		in.NewCategoryName = name
	}

	created, err := h.Catalog.CreatePart(c.Context(), in, file)
	if err != nil {
		return fail(c, "catalog.parts.create", err)
	}
	applog.Audit(c, "catalog.parts.create", map[string]any{"part_id": created.ID, "sku": created.SKU})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": created.ID, "sku": created.SKU})
}

type partPatchBody struct {
	Name        *string         `json:"name"`
	PartNumber  *string         `json:"partNumber"`
	Price       *json.Number    `json:"price"`
	Stock       *int            `json:"stock"`
	Status      *string         `json:"status"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"imageUrl"`
	CategoryID  json.RawMessage `json:"categoryId"`
}

// PATCH /catalog/parts/:id — partial update; omitted fields keep their
// value, categoryId:null clears the category.
func (h *PartsHandler) Patch(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "catalog.parts.update", httperr.ErrNotFound)
	}

	var body partPatchBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return fail(c, "catalog.parts.update", httperr.Validation("invalid json"))
	}

	patch := repos.PartPatch{
		PartNumber:  body.PartNumber,
		Stock:       body.Stock,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	}

	if body.Name != nil {
		name, ok := validate.Name(*body.Name)
		if !ok {
			return fail(c, "catalog.parts.update", httperr.Validation("name must not be empty"))
		}
		patch.Name = &name
	}
	if body.Price != nil {
		price, ok := validate.Price(body.Price.String())
		if !ok {
			return fail(c, "catalog.parts.update", httperr.Validation("price must be a non-negative number"))
		}
		patch.Price = &price
	}
	if body.Stock != nil && !validate.Stock(*body.Stock) {
		return fail(c, "catalog.parts.update", httperr.Validation("stock must be a non-negative integer"))
	}
	if body.Status != nil {
		status, ok := validate.Status(*body.Status)
		if !ok {
			return fail(c, "catalog.parts.update", httperr.Validation("status must be IN_STOCK or ON_ORDER"))
		}
		patch.Status = &status
	}
	if len(body.CategoryID) > 0 {
		if bytes.Equal(body.CategoryID, []byte("null")) {
			patch.ClearCategory = true
		} else {
			var catID string
			if err := json.Unmarshal(body.CategoryID, &catID); err != nil {
				return fail(c, "catalog.parts.update", httperr.Validation("categoryId must be a string or null"))
			}
			catID, ok := validate.ID(catID)
			if !ok {
				return fail(c, "catalog.parts.update", httperr.Validation("invalid categoryId"))
			}
			patch.CategoryID = &catID
		}
	}

	item, err := h.Catalog.UpdatePart(c.Context(), id, patch)
	if err != nil {
		return fail(c, "catalog.parts.update", err)
	}
	applog.Audit(c, "catalog.parts.update", map[string]any{"part_id": id})
	return c.JSON(fiber.Map{"item": item})
}

// DELETE /catalog/parts/:id
func (h *PartsHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "catalog.parts.delete", httperr.ErrNotFound)
	}
	if err := h.Catalog.DeletePart(id); err != nil {
		return fail(c, "catalog.parts.delete", err)
	}
	applog.Audit(c, "catalog.parts.delete", map[string]any{"part_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

// DeleteByBody handles DELETE /catalog/parts with a JSON {id} body,
// kept for older admin clients.
func (h *PartsHandler) DeleteByBody(c *fiber.Ctx) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ID == "" {
		return fail(c, "catalog.parts.delete", httperr.Validation("id is required"))
	}
	id, ok := validate.ID(body.ID)
	if !ok {
		return fail(c, "catalog.parts.delete", httperr.ErrNotFound)
	}
	if err := h.Catalog.DeletePart(id); err != nil {
		return fail(c, "catalog.parts.delete", err)
	}
	applog.Audit(c, "catalog.parts.delete", map[string]any{"part_id": id})
	return c.JSON(fiber.Map{"ok": true})
}
