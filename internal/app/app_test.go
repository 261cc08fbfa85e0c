package app

import (
	"errors"
	"testing"

	"booker/internal/store"
	"booker/pkg/domain"
)

type stubCatalog struct {
	volumes map[string]domain.SearchResultBook
	err     error
}

func (c *stubCatalog) Search(query string, limit int) ([]domain.SearchResultBook, error) {
	if c.err != nil {
		return nil, c.err
	}
	res := make([]domain.SearchResultBook, 0, len(c.volumes))
	for _, v := range c.volumes {
		res = append(res, v)
	}
	return res, nil
}

func (c *stubCatalog) GetVolume(googleID string) (*domain.SearchResultBook, error) {
	if c.err != nil {
		return nil, c.err
	}
	if v, ok := c.volumes[googleID]; ok {
		return &v, nil
	}
	return nil, nil
}

func newTestApp(t *testing.T, catalog Catalog) (*App, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	a, err := New(Config{Accounts: st, Favorites: st, Catalog: catalog})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, st
}

func TestAddFavoriteValidatesPayload(t *testing.T) {
	a, st := newTestApp(t, nil)
	owner, _ := st.Create("alice", "pw123456")

	tests := []struct {
		name string
		book domain.SearchResultBook
	}{
		{"missing googleId", domain.SearchResultBook{Title: "Dune"}},
		{"missing title", domain.SearchResultBook{GoogleID: "xyz"}},
		{"blank fields", domain.SearchResultBook{GoogleID: "  ", Title: "  "}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := a.AddFavorite(owner.ID, tc.book); err == nil || errors.Is(err, ErrStaleOwner) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAddFavoriteOwnership(t *testing.T) {
	a, st := newTestApp(t, nil)
	owner, _ := st.Create("alice", "pw123456")

	record, err := a.AddFavorite(owner.ID, domain.SearchResultBook{GoogleID: "xyz", Title: "Dune"})
	if err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if record.OwnerID != owner.ID {
		t.Fatalf("ownerId = %q, want %q", record.OwnerID, owner.ID)
	}
	if record.GoogleID != "xyz" {
		t.Fatalf("googleId = %q, want xyz", record.GoogleID)
	}
}

func TestAddFavoriteStaleOwner(t *testing.T) {
	a, st := newTestApp(t, nil)
	owner, _ := st.Create("alice", "pw123456")
	st.DeleteAccount(owner.ID)

	_, err := a.AddFavorite(owner.ID, domain.SearchResultBook{GoogleID: "xyz", Title: "Dune"})
	if !errors.Is(err, ErrStaleOwner) {
		t.Fatalf("expected ErrStaleOwner, got %v", err)
	}
}

func TestRemoveFavorite(t *testing.T) {
	a, st := newTestApp(t, nil)
	owner, _ := st.Create("alice", "pw123456")
	record, err := a.AddFavorite(owner.ID, domain.SearchResultBook{GoogleID: "xyz", Title: "Dune"})
	if err != nil {
		t.Fatalf("add favorite: %v", err)
	}

	if err := a.RemoveFavorite(owner.ID, ""); err == nil || errors.Is(err, ErrStaleOwner) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
	if err := a.RemoveFavorite(owner.ID, record.ID); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	// The record is gone, so a second remove reads as a store refusal.
	if err := a.RemoveFavorite(owner.ID, record.ID); !errors.Is(err, ErrStaleOwner) {
		t.Fatalf("expected ErrStaleOwner on missing record, got %v", err)
	}
}

func TestRemoveFavoriteCrossOwner(t *testing.T) {
	a, st := newTestApp(t, nil)
	alice, _ := st.Create("alice", "pw123456")
	bob, _ := st.Create("bob", "pw123456")
	record, err := a.AddFavorite(bob.ID, domain.SearchResultBook{GoogleID: "xyz", Title: "Dune"})
	if err != nil {
		t.Fatalf("add favorite: %v", err)
	}

	if err := a.RemoveFavorite(alice.ID, record.ID); !errors.Is(err, ErrStaleOwner) {
		t.Fatalf("cross-owner remove must surface as stale, got %v", err)
	}
	if _, err := a.AddFavorite(bob.ID, domain.SearchResultBook{GoogleID: "abc", Title: "Other"}); err != nil {
		t.Fatalf("bob must remain usable: %v", err)
	}
}

func TestResolveBookPageAnonymous(t *testing.T) {
	catalog := &stubCatalog{volumes: map[string]domain.SearchResultBook{
		"xyz": {GoogleID: "xyz", Title: "Dune"},
	}}
	a, _ := newTestApp(t, catalog)

	page, err := a.ResolveBookPage("", "xyz")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if page.IsLoggedIn {
		t.Fatal("anonymous page must report isLoggedIn=false")
	}
	if page.IsFavorite || page.Book == nil || page.Book.Title != "Dune" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestResolveBookPagePrefersFavorite(t *testing.T) {
	catalog := &stubCatalog{volumes: map[string]domain.SearchResultBook{
		"xyz": {GoogleID: "xyz", Title: "Dune (catalog)"},
	}}
	a, st := newTestApp(t, catalog)
	owner, _ := st.Create("alice", "pw123456")
	record, err := a.AddFavorite(owner.ID, domain.SearchResultBook{GoogleID: "xyz", Title: "Dune"})
	if err != nil {
		t.Fatalf("add favorite: %v", err)
	}

	page, err := a.ResolveBookPage(owner.ID, "xyz")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !page.IsLoggedIn || !page.IsFavorite {
		t.Fatalf("unexpected flags: %+v", page)
	}
	if page.Book == nil || page.Book.ID != record.ID || page.Book.Title != "Dune" {
		t.Fatalf("favorite record must win: %+v", page.Book)
	}
}

func TestResolveBookPageNoContent(t *testing.T) {
	a, _ := newTestApp(t, &stubCatalog{volumes: map[string]domain.SearchResultBook{}})
	if _, err := a.ResolveBookPage("", "missing"); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestResolveBookPageCatalogDown(t *testing.T) {
	a, _ := newTestApp(t, &stubCatalog{err: errors.New("boom")})
	if _, err := a.ResolveBookPage("", "xyz"); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if _, err := a.SearchBooks("dune", 10); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}
