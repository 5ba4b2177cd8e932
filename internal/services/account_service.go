package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"autobridge/internal/blob"
	"autobridge/internal/httperr"
	applog "autobridge/internal/log"
	"autobridge/internal/repos"
)

// maxAvatarBytes caps avatar uploads at 2 MB.
const maxAvatarBytes = 2_000_000

type AccountService struct {
	Users *repos.UserRepo
	Blobs blob.Store
}

func NewAccountService(users *repos.UserRepo, blobs blob.Store) *AccountService {
	return &AccountService{Users: users, Blobs: blobs}
}

// UpdateAvatar stores the new blob, records its URL, then deletes the
// previous blob best-effort. A failed cleanup never fails the request.
func (s *AccountService) UpdateAvatar(ctx context.Context, userID string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxAvatarBytes {
		return "", httperr.ErrTooLarge
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", httperr.ErrUnsupportedMedia
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := "avatars/" + userID + "/" + uuid.NewString()
	url, err := s.Blobs.Put(ctx, key, contentType, f)
	if err != nil {
		return "", err
	}

	prev, err := s.Users.SetAvatarURL(userID, url)
	if err != nil {
		return "", err
	}
	if prev != nil && *prev != "" {
		if derr := s.Blobs.Delete(ctx, *prev); derr != nil {
			applog.Error(nil, "account.avatar.cleanup.fail", derr, map[string]any{"user_id": userID})
		}
	}
	return url, nil
}
