package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"booker/pkg/auth"
	"booker/pkg/domain"
)

// MemoryStore keeps accounts and favorites in-process. Used in tests and
// local dev; semantics mirror GormStore except duplicate (owner, googleId)
// adds are allowed, a store-layer decision.
type MemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]domain.Account // key: account ID
	usernames map[string]string         // username -> account ID
	favorites map[string]domain.FavoriteRecord
	order     []string // favorite insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[string]domain.Account),
		usernames: make(map[string]string),
		favorites: make(map[string]domain.FavoriteRecord),
	}
}

// Create registers an account with a unique username.
func (m *MemoryStore) Create(username, password string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Account{}, errors.New("username and password required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Account{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.usernames[username]; taken {
		return domain.Account{}, errors.New("username already exists")
	}
	account := domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	m.accounts[account.ID] = account
	m.usernames[username] = account.ID
	return account, nil
}

// Login verifies credentials.
func (m *MemoryStore) Login(username, password string) (domain.Account, error) {
	m.mu.RLock()
	id, ok := m.usernames[strings.TrimSpace(username)]
	account := m.accounts[id]
	m.mu.RUnlock()
	if !ok || !auth.CheckPassword(password, account.PasswordHash) {
		return domain.Account{}, errors.New("invalid credentials")
	}
	return account, nil
}

// GetByID returns an account by ID.
func (m *MemoryStore) GetByID(id string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	return account, ok, nil
}

// DeleteAccount removes an account out-of-band, leaving its favorites and any
// live sessions behind. Exists to exercise stale-session paths.
func (m *MemoryStore) DeleteAccount(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[id]; ok {
		delete(m.usernames, account.Username)
		delete(m.accounts, id)
	}
}

// Add persists a favorite for ownerID. ok=false means the owner does not
// resolve.
func (m *MemoryStore) Add(ownerID string, book domain.SearchResultBook) (domain.FavoriteRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[ownerID]; !ok {
		return domain.FavoriteRecord{}, false, nil
	}
	record := domain.FavoriteRecord{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		GoogleID:    book.GoogleID,
		Title:       book.Title,
		Authors:     book.Authors,
		Thumbnail:   book.Thumbnail,
		Description: book.Description,
		PageCount:   book.PageCount,
		Categories:  book.Categories,
		PreviewLink: book.PreviewLink,
		CreatedAt:   time.Now().UTC(),
	}
	m.favorites[record.ID] = record
	m.order = append(m.order, record.ID)
	return record, true, nil
}

// Remove deletes a favorite owned by ownerID. ok=false when the owner does
// not resolve or the record is not theirs.
func (m *MemoryStore) Remove(ownerID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[ownerID]; !ok {
		return false, nil
	}
	record, ok := m.favorites[id]
	if !ok || record.OwnerID != ownerID {
		return false, nil
	}
	delete(m.favorites, id)
	filtered := m.order[:0]
	for _, item := range m.order {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.order = filtered
	return true, nil
}

// GetByCatalogID looks up a favorite by its catalog identity.
func (m *MemoryStore) GetByCatalogID(ownerID, googleID string) (domain.FavoriteRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		record := m.favorites[id]
		if record.OwnerID == ownerID && record.GoogleID == googleID {
			return record, true, nil
		}
	}
	return domain.FavoriteRecord{}, false, nil
}

// ListByOwner returns the owner's favorites in insertion order.
func (m *MemoryStore) ListByOwner(ownerID string) ([]domain.FavoriteRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.FavoriteRecord, 0, len(m.order))
	for _, id := range m.order {
		if record, ok := m.favorites[id]; ok && record.OwnerID == ownerID {
			res = append(res, record)
		}
	}
	return res, nil
}
