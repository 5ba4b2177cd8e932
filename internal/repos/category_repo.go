package repos

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"autobridge/internal/domain"
	"autobridge/internal/httperr"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List() ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `SELECT id,name FROM categories ORDER BY name`)
	return out, err
}

// UpsertByName returns the existing category matching name
// (case-insensitive) or creates a new one.
func (r *CategoryRepo) UpsertByName(name string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT id,name FROM categories WHERE LOWER(name)=LOWER(?)`, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, err
	}

	c = domain.Category{ID: uuid.NewString(), Name: name}
	if _, err := r.db.Exec(`INSERT INTO categories(id,name) VALUES(?,?)`, c.ID, c.Name); err != nil {
		if isUniqueViolation(err) {
			// Lost a concurrent race; the winner's row is the answer.
			var existing domain.Category
			if gerr := r.db.Get(&existing, `SELECT id,name FROM categories WHERE LOWER(name)=LOWER(?)`, name); gerr == nil {
				return existing, nil
			}
		}
		return domain.Category{}, err
	}
	return c, nil
}

// Exists reports whether a category id is present.
func (r *CategoryRepo) Exists(id string) (bool, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM categories WHERE id=?`, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete detaches all parts referencing the category, then removes the
// row, in one transaction. A concurrent second delete observes NotFound.
func (r *CategoryRepo) Delete(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE parts SET category_id=NULL, updated_at=CURRENT_TIMESTAMP WHERE category_id=?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM categories WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperr.ErrNotFound
	}
	return tx.Commit()
}
