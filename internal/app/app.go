package app

import (
	"errors"
	"fmt"
	"strings"

	"booker/internal/store"
	"booker/pkg/domain"
)

// Catalog is the external book-search service.
type Catalog interface {
	Search(query string, limit int) ([]domain.SearchResultBook, error)
	// GetVolume returns nil with no error when the catalog has no such book.
	GetVolume(googleID string) (*domain.SearchResultBook, error)
}

// Config wires required dependencies for the core application.
type Config struct {
	Accounts  store.AccountStore
	Favorites store.FavoriteStore
	Catalog   Catalog
}

// App holds the business logic: auth flows, favorites synchronization, and
// the book page resolver.
type App struct {
	accounts  store.AccountStore
	favorites store.FavoriteStore
	catalog   Catalog
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Accounts == nil {
		return nil, errors.New("app: account store is required")
	}
	if cfg.Favorites == nil {
		return nil, errors.New("app: favorites store is required")
	}
	return &App{
		accounts:  cfg.Accounts,
		favorites: cfg.Favorites,
		catalog:   cfg.Catalog,
	}, nil
}

// SignUp registers a new account.
func (a *App) SignUp(username, password string) (domain.Account, error) {
	return a.accounts.Create(username, password)
}

// Login validates credentials.
func (a *App) Login(username, password string) (domain.Account, error) {
	return a.accounts.Login(username, password)
}

// AddFavorite performs exactly one store call and classifies the result. It
// never deduplicates; whether duplicate adds create duplicate records is the
// store's decision.
func (a *App) AddFavorite(ownerID string, book domain.SearchResultBook) (domain.FavoriteRecord, error) {
	if strings.TrimSpace(book.GoogleID) == "" || strings.TrimSpace(book.Title) == "" {
		return domain.FavoriteRecord{}, errors.New("googleId and title are required")
	}
	record, ok, err := a.favorites.Add(ownerID, book)
	if err != nil {
		return domain.FavoriteRecord{}, err
	}
	if !ok {
		return domain.FavoriteRecord{}, ErrStaleOwner
	}
	return record, nil
}

// RemoveFavorite deletes a favorite by record id. A store refusal — stale
// owner or a record the owner does not hold — surfaces as ErrStaleOwner;
// the two are deliberately indistinguishable.
func (a *App) RemoveFavorite(ownerID, recordID string) error {
	if strings.TrimSpace(recordID) == "" {
		return errors.New("id is required")
	}
	ok, err := a.favorites.Remove(ownerID, recordID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStaleOwner
	}
	return nil
}

// ListFavorites returns the owner's persisted favorites.
func (a *App) ListFavorites(ownerID string) ([]domain.FavoriteRecord, error) {
	return a.favorites.ListByOwner(ownerID)
}

// SearchBooks queries the external catalog.
func (a *App) SearchBooks(query string, limit int) ([]domain.SearchResultBook, error) {
	if a.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	items, err := a.catalog.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return items, nil
}

// BookPage is the read-path response for a single catalog id.
type BookPage struct {
	IsLoggedIn bool                `json:"isLoggedIn"`
	IsFavorite bool                `json:"isFavorite"`
	Book       *domain.DisplayBook `json:"book,omitempty"`
}

// ResolveBookPage decides what to render for a catalog id. An empty ownerID
// means anonymous. The persisted favorite wins over the catalog's transient
// result; with neither, ErrNoContent tells the caller there is nothing to
// show.
func (a *App) ResolveBookPage(ownerID, googleID string) (BookPage, error) {
	page := BookPage{IsLoggedIn: ownerID != ""}

	var persisted *domain.FavoriteRecord
	if ownerID != "" {
		record, ok, err := a.favorites.GetByCatalogID(ownerID, googleID)
		if err != nil {
			return page, err
		}
		if ok {
			persisted = &record
		}
	}

	var transient *domain.SearchResultBook
	if persisted == nil && a.catalog != nil {
		volume, err := a.catalog.GetVolume(googleID)
		if err != nil {
			return page, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		transient = volume
	}

	book, ok := Resolve(persisted, transient)
	if !ok {
		return page, ErrNoContent
	}
	page.Book = &book
	page.IsFavorite = book.IsFavorite
	return page, nil
}
