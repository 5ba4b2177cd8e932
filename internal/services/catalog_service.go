package services

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"autobridge/internal/blob"
	"autobridge/internal/domain"
	"autobridge/internal/httperr"
	applog "autobridge/internal/log"
	"autobridge/internal/repos"
)

// listCap bounds every parts listing.
const listCap = 50

type CatalogService struct {
	Parts *repos.PartRepo
	Cats  *repos.CategoryRepo
	Blobs blob.Store
}

func NewCatalogService(parts *repos.PartRepo, cats *repos.CategoryRepo, blobs blob.Store) *CatalogService {
	return &CatalogService{Parts: parts, Cats: cats, Blobs: blobs}
}

// PartInput is the validated create payload. CategoryID and
// NewCategoryName are mutually exclusive; neither leaves the part
// uncategorized.
type PartInput struct {
	Name            string
	PartNumber      *string
	Price           decimal.Decimal
	Stock           int
	Status          string
	Description     *string
	ImageURL        *string
	CategoryID      string
	NewCategoryName string
}

func (s *CatalogService) ListParts(f repos.PartFilter) ([]domain.Part, error) {
	return s.Parts.List(f, listCap)
}

func (s *CatalogService) GetPart(id string) (domain.Part, error) {
	return s.Parts.Get(id)
}

// CreatePart persists a new part, uploading the optional image first so
// the record never references a blob that failed to store.
func (s *CatalogService) CreatePart(ctx context.Context, in PartInput, image *multipart.FileHeader) (domain.Part, error) {
	if in.CategoryID != "" && in.NewCategoryName != "" {
		return domain.Part{}, httperr.Validation("specify either categoryId or newCategoryName, not both")
	}

	p := domain.Part{
		ID:          uuid.NewString(),
		SKU:         newSKU(),
		Name:        in.Name,
		PartNumber:  in.PartNumber,
		Price:       in.Price,
		Stock:       in.Stock,
		Status:      in.Status,
		ImageURL:    in.ImageURL,
		Description: in.Description,
	}

	switch {
	case in.CategoryID != "":
		ok, err := s.Cats.Exists(in.CategoryID)
		if err != nil {
			return domain.Part{}, err
		}
		if !ok {
			return domain.Part{}, httperr.Validation("unknown category %q", in.CategoryID)
		}
		p.Category = &domain.CategoryRef{ID: in.CategoryID}
	case in.NewCategoryName != "":
		c, err := s.Cats.UpsertByName(in.NewCategoryName)
		if err != nil {
			return domain.Part{}, err
		}
		p.Category = &domain.CategoryRef{ID: c.ID, Name: c.Name}
	}

	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return domain.Part{}, err
		}
		p.ImageURL = &url
	}

	if err := s.Parts.Create(p); err != nil {
		return domain.Part{}, err
	}
	return p, nil
}

// UpdatePart applies a partial patch; omitted fields stay unchanged. A
// replaced image's old blob is deleted best-effort after the update.
func (s *CatalogService) UpdatePart(ctx context.Context, id string, patch repos.PartPatch) (domain.Part, error) {
	if patch.Empty() {
		return domain.Part{}, httperr.Validation("no fields to update")
	}
	if patch.CategoryID != nil {
		ok, err := s.Cats.Exists(*patch.CategoryID)
		if err != nil {
			return domain.Part{}, err
		}
		if !ok {
			return domain.Part{}, httperr.Validation("unknown category %q", *patch.CategoryID)
		}
	}

	prev, err := s.Parts.Get(id)
	if err != nil {
		return domain.Part{}, err
	}
	if err := s.Parts.Update(id, patch); err != nil {
		return domain.Part{}, err
	}

	if patch.ImageURL != nil && prev.ImageURL != nil && *prev.ImageURL != *patch.ImageURL {
		if derr := s.Blobs.Delete(ctx, *prev.ImageURL); derr != nil {
			applog.Error(nil, "catalog.image.cleanup.fail", derr, map[string]any{"part_id": id})
		}
	}

	return s.Parts.Get(id)
}

func (s *CatalogService) DeletePart(id string) error {
	return s.Parts.Delete(id)
}

// ListCategories returns categories in locale-aware alphabetical order.
func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	cats, err := s.Cats.List()
	if err != nil {
		return nil, err
	}
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(cats, func(i, j int) bool {
		return col.CompareString(cats[i].Name, cats[j].Name) < 0
	})
	return cats, nil
}

// CreateCategory is an upsert-by-name: an existing name returns the
// existing category instead of erroring.
func (s *CatalogService) CreateCategory(name string) (domain.Category, error) {
	return s.Cats.UpsertByName(name)
}

func (s *CatalogService) DeleteCategory(id string) error {
	return s.Cats.Delete(id)
}

func (s *CatalogService) uploadImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", httperr.ErrUnsupportedMedia
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if ext == "" {
		ext = "jpg"
	}
	key := "parts/" + uuid.NewString() + "." + ext
	return s.Blobs.Put(ctx, key, contentType, f)
}

func newSKU() string {
	return "P-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
