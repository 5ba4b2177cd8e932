package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"autobridge/internal/domain"
	"autobridge/internal/httperr"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,email,password_hash,name,role,avatar_url`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and reports ErrConflict on a taken email.
func (r *UserRepo) Create(email, passwordHash string, name *string) (*domain.User, error) {
	u := domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Hash:  passwordHash,
		Name:  name,
		Role:  domain.RoleUser,
	}
	_, err := r.DB.Exec(`
		INSERT INTO users(id,email,password_hash,name,role)
		VALUES(?,?,?,?,?)
	`, u.ID, u.Email, u.Hash, u.Name, u.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, httperr.ErrConflict
		}
		return nil, err
	}
	return &u, nil
}

// SetAvatarURL updates the avatar and returns the previous URL for
// best-effort blob cleanup.
func (r *UserRepo) SetAvatarURL(userID, url string) (prev *string, err error) {
	tx, err := r.DB.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.Get(&prev, `SELECT avatar_url FROM users WHERE id=?`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperr.ErrNotFound
		}
		return nil, err
	}
	if _, err := tx.Exec(`UPDATE users SET avatar_url=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, url, userID); err != nil {
		return nil, err
	}
	return prev, tx.Commit()
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text;
	// it does not export a typed error for them.
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
