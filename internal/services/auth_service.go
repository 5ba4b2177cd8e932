package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"autobridge/internal/domain"
	"autobridge/internal/httperr"
	"autobridge/internal/repos"
	"autobridge/internal/session"
)

// bcryptCost matches the original registration flow.
const bcryptCost = 10

// dummyHash is compared against on unknown-email logins so both failure
// paths cost a hash verification.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("autobridge-dummy"), bcryptCost)

type AuthService struct {
	Users    *repos.UserRepo
	Sessions *session.Service
}

// Register creates the user and issues a session token (auto-login).
func (s *AuthService) Register(email, password string, name *string) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", err
	}
	u, err := s.Users.Create(email, string(hash), name)
	if err != nil {
		if errors.Is(err, httperr.ErrConflict) {
			return nil, "", httperr.ErrConflict
		}
		return nil, "", err
	}
	token, err := s.Sessions.Issue(domain.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and issues a session token. Unknown email
// and wrong password fail identically.
func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, "", httperr.ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", httperr.ErrBadCreds
	}
	token, err := s.Sessions.Issue(domain.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// CurrentUser resolves a verified identity to its fresh user row, so
// role or avatar changes show up without reissuing the token.
func (s *AuthService) CurrentUser(ident domain.Identity) (*domain.User, error) {
	return s.Users.ByID(ident.ID)
}
