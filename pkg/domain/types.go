package domain

import "time"

// Account is a registered user. The ID is immutable once created.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SearchResultBook is the transient catalog shape of a book. It is never
// persisted; clients submit it verbatim when adding a favorite.
type SearchResultBook struct {
	GoogleID    string   `json:"googleId"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Description string   `json:"description,omitempty"`
	PageCount   int      `json:"pageCount,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	PreviewLink string   `json:"previewLink,omitempty"`
}

// FavoriteRecord is a persisted copy of a catalog book owned by exactly one
// account. (OwnerID, GoogleID) is unique per owner; ID identifies the record
// for deletion.
type FavoriteRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	GoogleID    string    `json:"googleId"`
	Title       string    `json:"title"`
	Authors     []string  `json:"authors,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Description string    `json:"description,omitempty"`
	PageCount   int       `json:"pageCount,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	PreviewLink string    `json:"previewLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DisplayBook is what the book page renders: either a persisted favorite or a
// transient search result, never a mix of both.
type DisplayBook struct {
	ID          string   `json:"id,omitempty"`
	GoogleID    string   `json:"googleId"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Description string   `json:"description,omitempty"`
	PageCount   int      `json:"pageCount,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	PreviewLink string   `json:"previewLink,omitempty"`
	IsFavorite  bool     `json:"isFavorite"`
}
