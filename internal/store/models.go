package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type AccountModel struct {
	ID           string    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (AccountModel) TableName() string { return "accounts" }

type FavoriteModel struct {
	ID          string `gorm:"primaryKey"`
	OwnerID     string `gorm:"not null;index;uniqueIndex:idx_owner_google"`
	GoogleID    string `gorm:"not null;uniqueIndex:idx_owner_google"`
	Title       string `gorm:"not null"`
	Authors     datatypes.JSON
	Thumbnail   string
	Description string
	PageCount   int
	Categories  datatypes.JSON
	PreviewLink string
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (FavoriteModel) TableName() string { return "favorites" }
