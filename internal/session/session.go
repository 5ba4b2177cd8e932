package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"autobridge/internal/domain"
)

// TTL is how long an issued session token stays valid. There is no
// server-side revocation: logout only clears the cookie, and a token
// remains verifiable until it expires.
const TTL = 30 * 24 * time.Hour

// CookieName is the fixed name of the session cookie.
const CookieName = "session"

var ErrInvalidToken = errors.New("invalid session token")

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies signed session tokens.
type Service struct {
	secret []byte
	now    func() time.Time
}

func New(secret string) *Service {
	return &Service{secret: []byte(secret), now: time.Now}
}

// NewWithClock is New with an injectable clock, for expiry tests.
func NewWithClock(secret string, now func() time.Time) *Service {
	return &Service{secret: []byte(secret), now: now}
}

// Issue signs a token carrying the identity, expiring TTL from now.
func (s *Service) Issue(ident domain.Identity) (string, error) {
	now := s.now()
	c := &claims{
		Email: ident.Email,
		Role:  ident.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify validates signature and expiry. Callers must treat any error as
// an anonymous session, never surface it to the end user.
func (s *Service) Verify(token string) (domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.Identity{}, err
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{ID: c.Subject, Email: c.Email, Role: c.Role}, nil
}
