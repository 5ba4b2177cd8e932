package services_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"autobridge/internal/httperr"
	"autobridge/internal/repos"
	"autobridge/internal/services"
)

type fakeBlob struct {
	puts       []string
	deleted    []string
	failDelete bool
}

func (f *fakeBlob) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	f.puts = append(f.puts, key)
	return "https://blob.test/" + key, nil
}

func (f *fakeBlob) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	if f.failDelete {
		return errors.New("blob backend unavailable")
	}
	return nil
}

func newCatalog(t *testing.T) (*services.CatalogService, *fakeBlob) {
	t.Helper()
	db := memdb(t)
	blobs := &fakeBlob{}
	return services.NewCatalogService(repos.NewPartRepo(db), repos.NewCategoryRepo(db), blobs), blobs
}

func price(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCreatePartRejectsBothCategoryFields(t *testing.T) {
	svc, _ := newCatalog(t)
	cat, err := svc.CreateCategory("Brakes")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	_, err = svc.CreatePart(context.Background(), services.PartInput{
		Name:            "Pad Set",
		Price:           price(t, "19.99"),
		Status:          "IN_STOCK",
		CategoryID:      cat.ID,
		NewCategoryName: "Suspension",
	}, nil)

	var ve *httperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want validation error, got %v", err)
	}
	items, err := svc.ListParts(repos.PartFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("no part should have been created, got %d", len(items))
	}
}

func TestCreateCategoryUpsertByName(t *testing.T) {
	svc, _ := newCatalog(t)

	first, err := svc.CreateCategory("Brakes")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.CreateCategory("brakes")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert created a duplicate: %s vs %s", first.ID, second.ID)
	}
}

func TestCreatePartWithNewCategoryName(t *testing.T) {
	svc, _ := newCatalog(t)

	p, err := svc.CreatePart(context.Background(), services.PartInput{
		Name:            "Oil Filter",
		Price:           price(t, "7.50"),
		Status:          "ON_ORDER",
		NewCategoryName: "Filters",
	}, nil)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if p.Category == nil || p.Category.Name != "Filters" {
		t.Fatalf("expected category Filters, got %+v", p.Category)
	}
	if p.SKU == "" {
		t.Fatal("sku not generated")
	}

	cats, err := svc.ListCategories()
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || cats[0].Name != "Filters" {
		t.Fatalf("category not upserted: %+v", cats)
	}
}

func TestDeleteCategoryDetachesParts(t *testing.T) {
	svc, _ := newCatalog(t)
	cat, err := svc.CreateCategory("Brakes")
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, name := range []string{"Pad Set", "Rotor", "Caliper"} {
		p, err := svc.CreatePart(context.Background(), services.PartInput{
			Name:       name,
			Price:      price(t, "10.00"),
			Status:     "IN_STOCK",
			CategoryID: cat.ID,
		}, nil)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		ids = append(ids, p.ID)
	}

	if err := svc.DeleteCategory(cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	for _, id := range ids {
		p, err := svc.GetPart(id)
		if err != nil {
			t.Fatalf("part %s should survive category deletion: %v", id, err)
		}
		if p.Category != nil {
			t.Fatalf("part %s still references deleted category", id)
		}
	}

	cats, err := svc.ListCategories()
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 0 {
		t.Fatalf("category still listed: %+v", cats)
	}

	// A concurrent retry observes NotFound.
	if err := svc.DeleteCategory(cat.ID); !errors.Is(err, httperr.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestUpdatePartPartialSemantics(t *testing.T) {
	svc, _ := newCatalog(t)
	cat, _ := svc.CreateCategory("Brakes")
	p, err := svc.CreatePart(context.Background(), services.PartInput{
		Name:       "Pad Set",
		Price:      price(t, "19.99"),
		Stock:      4,
		Status:     "IN_STOCK",
		CategoryID: cat.ID,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Empty patch is a validation error and leaves the part unchanged.
	_, err = svc.UpdatePart(context.Background(), p.ID, repos.PartPatch{})
	var ve *httperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("empty patch: want validation error, got %v", err)
	}

	// Price-only patch keeps the other fields.
	newPrice := price(t, "24.99")
	updated, err := svc.UpdatePart(context.Background(), p.ID, repos.PartPatch{Price: &newPrice})
	if err != nil {
		t.Fatalf("patch price: %v", err)
	}
	if !updated.Price.Equal(newPrice) {
		t.Fatalf("price not updated: %s", updated.Price)
	}
	if updated.Name != "Pad Set" || updated.Stock != 4 || updated.Category == nil {
		t.Fatalf("unrelated fields changed: %+v", updated)
	}

	// Explicit category clear.
	updated, err = svc.UpdatePart(context.Background(), p.ID, repos.PartPatch{ClearCategory: true})
	if err != nil {
		t.Fatalf("clear category: %v", err)
	}
	if updated.Category != nil {
		t.Fatalf("category not cleared: %+v", updated.Category)
	}

	_, err = svc.UpdatePart(context.Background(), "missing", repos.PartPatch{ClearCategory: true})
	if !errors.Is(err, httperr.ErrNotFound) {
		t.Fatalf("unknown id: want ErrNotFound, got %v", err)
	}
}

func TestUpdatePartImageReplaceDeletesOldBlob(t *testing.T) {
	svc, blobs := newCatalog(t)
	oldURL := "https://blob.test/parts/old.jpg"
	p, err := svc.CreatePart(context.Background(), services.PartInput{
		Name:     "Strut",
		Price:    price(t, "55.00"),
		Status:   "IN_STOCK",
		ImageURL: &oldURL,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	blobs.failDelete = true // cleanup failure must not fail the update
	newURL := "https://blob.test/parts/new.jpg"
	updated, err := svc.UpdatePart(context.Background(), p.ID, repos.PartPatch{ImageURL: &newURL})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ImageURL == nil || *updated.ImageURL != newURL {
		t.Fatalf("image url not replaced: %+v", updated.ImageURL)
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != oldURL {
		t.Fatalf("old blob not deleted best-effort: %+v", blobs.deleted)
	}
}

func TestListPartsFilters(t *testing.T) {
	svc, _ := newCatalog(t)
	cat, _ := svc.CreateCategory("Brakes")
	pn := "BP-1042"
	mk := func(in services.PartInput) {
		t.Helper()
		if _, err := svc.CreatePart(context.Background(), in, nil); err != nil {
			t.Fatal(err)
		}
	}
	mk(services.PartInput{Name: "Brake Pad Set", Price: price(t, "19.99"), Status: "IN_STOCK", CategoryID: cat.ID, PartNumber: &pn})
	mk(services.PartInput{Name: "Headlight", Price: price(t, "89.00"), Status: "ON_ORDER"})
	mk(services.PartInput{Name: "Wiper Blade", Price: price(t, "5.00"), Status: "IN_STOCK"})

	byText, err := svc.ListParts(repos.PartFilter{Q: "brake"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byText) != 1 || byText[0].Name != "Brake Pad Set" {
		t.Fatalf("text filter: %+v", byText)
	}

	byPN, err := svc.ListParts(repos.PartFilter{Q: "bp-10"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byPN) != 1 || byPN[0].PartNumber == nil || *byPN[0].PartNumber != pn {
		t.Fatalf("part-number filter: %+v", byPN)
	}

	byStatus, err := svc.ListParts(repos.PartFilter{Status: "ON_ORDER"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatus) != 1 || byStatus[0].Name != "Headlight" {
		t.Fatalf("status filter: %+v", byStatus)
	}

	byCat, err := svc.ListParts(repos.PartFilter{CategoryID: cat.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(byCat) != 1 || byCat[0].Name != "Brake Pad Set" {
		t.Fatalf("category filter: %+v", byCat)
	}

	all, err := svc.ListParts(repos.PartFilter{CategoryID: "all"})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("category=all should match everything, got %d", len(all))
	}
}

func TestListCategoriesLocaleOrder(t *testing.T) {
	svc, _ := newCatalog(t)
	for _, name := range []string{"Ölfilter", "Brakes", "antenna"} {
		if _, err := svc.CreateCategory(name); err != nil {
			t.Fatal(err)
		}
	}
	cats, err := svc.ListCategories()
	if err != nil {
		t.Fatal(err)
	}
	got := []string{}
	for _, c := range cats {
		got = append(got, c.Name)
	}
	want := []string{"antenna", "Brakes", "Ölfilter"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("locale order mismatch: want %v, got %v", want, got)
		}
	}
}
