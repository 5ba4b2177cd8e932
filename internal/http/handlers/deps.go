package handlers

import (
	"github.com/jmoiron/sqlx"

	"autobridge/internal/blob"
	"autobridge/internal/captcha"
	"autobridge/internal/config"
	"autobridge/internal/repos"
	"autobridge/internal/services"
	"autobridge/internal/session"
)

type Deps struct {
	Auth       *AuthHandler
	Parts      *PartsHandler
	Categories *CategoryHandler
	Account    *AccountHandler

	Sessions *session.Service
	AuthSvc  *services.AuthService
}

func NewDeps(db *sqlx.DB, cfg config.Config, sessions *session.Service, blobs blob.Store) *Deps {
	userRepo := repos.NewUserRepo(db)
	partRepo := repos.NewPartRepo(db)
	catRepo := repos.NewCategoryRepo(db)

	authSvc := &services.AuthService{Users: userRepo, Sessions: sessions}
	catalogSvc := services.NewCatalogService(partRepo, catRepo, blobs)
	accountSvc := services.NewAccountService(userRepo, blobs)

	var verifier *captcha.Verifier
	if cfg.CaptchaSecret != "" {
		verifier = captcha.New(cfg.CaptchaSecret)
	}

	return &Deps{
		Auth: &AuthHandler{
			Auth:            authSvc,
			Captcha:         verifier,
			CaptchaRequired: cfg.CaptchaRequired,
		},
		Parts:      &PartsHandler{Catalog: catalogSvc},
		Categories: &CategoryHandler{Catalog: catalogSvc},
		Account:    &AccountHandler{Account: accountSvc},
		Sessions:   sessions,
		AuthSvc:    authSvc,
	}
}
