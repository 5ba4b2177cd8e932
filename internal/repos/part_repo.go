package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"autobridge/internal/domain"
	"autobridge/internal/httperr"
)

type PartRepo struct{ db *sqlx.DB }

func NewPartRepo(db *sqlx.DB) *PartRepo { return &PartRepo{db: db} }

// PartFilter narrows List results. Empty fields are ignored; CategoryID
// "all" matches everything.
type PartFilter struct {
	Q          string
	Status     string
	CategoryID string
}

// PartPatch carries a partial update. Nil pointers mean "leave
// unchanged"; ClearCategory detaches the part from its category.
type PartPatch struct {
	Name          *string
	PartNumber    *string
	Price         *decimal.Decimal
	Stock         *int
	Status        *string
	ImageURL      *string
	Description   *string
	CategoryID    *string
	ClearCategory bool
}

// Empty reports whether the patch changes nothing.
func (p PartPatch) Empty() bool {
	return p.Name == nil && p.PartNumber == nil && p.Price == nil &&
		p.Stock == nil && p.Status == nil && p.ImageURL == nil &&
		p.Description == nil && p.CategoryID == nil && !p.ClearCategory
}

type partRow struct {
	ID          string          `db:"id"`
	SKU         string          `db:"sku"`
	Name        string          `db:"name"`
	PartNumber  *string         `db:"part_number"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	Status      string          `db:"status"`
	ImageURL    *string         `db:"image_url"`
	Description *string         `db:"description"`
	CategoryID  *string         `db:"category_id"`
	CatName     *string         `db:"cat_name"`
	CreatedAt   string          `db:"created_at"`
	UpdatedAt   string          `db:"updated_at"`
}

func (r partRow) toDomain() domain.Part {
	p := domain.Part{
		ID:          r.ID,
		SKU:         r.SKU,
		Name:        r.Name,
		PartNumber:  r.PartNumber,
		Price:       r.Price,
		Stock:       r.Stock,
		Status:      r.Status,
		ImageURL:    r.ImageURL,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CategoryID != nil && r.CatName != nil {
		p.Category = &domain.CategoryRef{ID: *r.CategoryID, Name: *r.CatName}
	}
	return p
}

const partSelect = `
  SELECT
    p.id, p.sku, p.name, p.part_number, p.price, p.stock, p.status,
    p.image_url, p.description, p.category_id,
    c.name AS cat_name,
    COALESCE(p.created_at,'') AS created_at,
    COALESCE(p.updated_at,'') AS updated_at
  FROM parts p
  LEFT JOIN categories c ON c.id = p.category_id`

// List returns the newest matching parts, capped at limit.
func (r *PartRepo) List(f PartFilter, limit int) ([]domain.Part, error) {
	where := `1=1`
	args := []any{}
	if f.Q != "" {
		q := "%" + strings.ToLower(f.Q) + "%"
		where += ` AND (LOWER(p.name) LIKE ? OR LOWER(p.sku) LIKE ? OR LOWER(COALESCE(p.part_number,'')) LIKE ?)`
		args = append(args, q, q, q)
	}
	if f.Status != "" {
		where += ` AND p.status = ?`
		args = append(args, f.Status)
	}
	if f.CategoryID != "" && f.CategoryID != "all" {
		where += ` AND p.category_id = ?`
		args = append(args, f.CategoryID)
	}
	args = append(args, limit)

	var rows []partRow
	err := r.db.Select(&rows, partSelect+`
  WHERE `+where+`
  ORDER BY p.created_at DESC, p.rowid DESC
  LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Part, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PartRepo) Get(id string) (domain.Part, error) {
	var row partRow
	err := r.db.Get(&row, partSelect+` WHERE p.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Part{}, httperr.ErrNotFound
		}
		return domain.Part{}, err
	}
	return row.toDomain(), nil
}

func (r *PartRepo) Create(p domain.Part) error {
	var categoryID *string
	if p.Category != nil {
		categoryID = &p.Category.ID
	}
	_, err := r.db.Exec(`
		INSERT INTO parts(id,sku,name,part_number,price,stock,status,image_url,description,category_id)
		VALUES(?,?,?,?,?,?,?,?,?,?)
	`, p.ID, p.SKU, p.Name, p.PartNumber, p.Price, p.Stock, p.Status, p.ImageURL, p.Description, categoryID)
	if err != nil && isUniqueViolation(err) {
		return httperr.ErrConflict
	}
	return err
}

// Update applies a partial patch. Omitted fields keep their value.
func (r *PartRepo) Update(id string, patch PartPatch) error {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+"=?")
		args = append(args, v)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.PartNumber != nil {
		add("part_number", *patch.PartNumber)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.ClearCategory {
		set = append(set, "category_id=NULL")
	} else if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	if len(set) == 0 {
		return httperr.Validation("no fields to update")
	}
	set = append(set, "updated_at=CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := r.db.Exec(`UPDATE parts SET `+strings.Join(set, ", ")+` WHERE id=?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func (r *PartRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM parts WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperr.ErrNotFound
	}
	return nil
}
