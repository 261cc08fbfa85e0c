package store

import "booker/pkg/domain"

// AccountStore manages user accounts and credential checks.
type AccountStore interface {
	// Create registers an account. It fails when the username is taken or
	// either field is empty.
	Create(username, password string) (domain.Account, error)
	// Login verifies credentials. Unknown usernames and wrong passwords fail
	// identically with "invalid credentials".
	Login(username, password string) (domain.Account, error)
	GetByID(id string) (domain.Account, bool, error)
}

// FavoriteStore persists per-user favorite book records.
//
// Add and Remove report ok=false when the owning account no longer resolves.
// Remove additionally reports ok=false for record ids not owned by ownerID,
// so a cross-owner deletion attempt is indistinguishable from a stale owner.
type FavoriteStore interface {
	Add(ownerID string, book domain.SearchResultBook) (domain.FavoriteRecord, bool, error)
	Remove(ownerID, id string) (bool, error)
	GetByCatalogID(ownerID, googleID string) (domain.FavoriteRecord, bool, error)
	ListByOwner(ownerID string) ([]domain.FavoriteRecord, error)
}
