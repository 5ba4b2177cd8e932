package domain

// User roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID        string  `db:"id" json:"id"`
	Email     string  `db:"email" json:"email"`
	Name      *string `db:"name" json:"name"`
	Hash      string  `db:"password_hash" json:"-"`
	Role      string  `db:"role" json:"role"`
	AvatarURL *string `db:"avatar_url" json:"avatarUrl"`
}

// Identity is the subset of a user carried inside a session token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
