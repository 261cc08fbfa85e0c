package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"booker/pkg/auth"
	"booker/pkg/domain"
)

// GormStore implements AccountStore and FavoriteStore using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&AccountModel{}, &FavoriteModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Create registers an account with a unique username.
func (s *GormStore) Create(username, password string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Account{}, errors.New("username and password required")
	}
	var count int64
	if err := s.db.Model(&AccountModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return domain.Account{}, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return domain.Account{}, errors.New("username already exists")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}
	model := AccountModel{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}
	return accountFromModel(model), nil
}

// Login verifies credentials.
func (s *GormStore) Login(username, password string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	var model AccountModel
	if err := s.db.Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, errors.New("invalid credentials")
		}
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if !auth.CheckPassword(password, model.PasswordHash) {
		return domain.Account{}, errors.New("invalid credentials")
	}
	return accountFromModel(model), nil
}

// GetByID returns an account by ID.
func (s *GormStore) GetByID(id string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// Add persists a favorite for ownerID. ok=false means the owner does not
// resolve. Duplicate (owner, googleId) pairs are rejected by the unique index.
func (s *GormStore) Add(ownerID string, book domain.SearchResultBook) (domain.FavoriteRecord, bool, error) {
	if _, found, err := s.GetByID(ownerID); err != nil {
		return domain.FavoriteRecord{}, false, err
	} else if !found {
		return domain.FavoriteRecord{}, false, nil
	}
	model, err := favoriteToModel(ownerID, book)
	if err != nil {
		return domain.FavoriteRecord{}, true, err
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.FavoriteRecord{}, true, fmt.Errorf("save favorite: %w", err)
	}
	record, err := favoriteFromModel(model)
	if err != nil {
		return domain.FavoriteRecord{}, true, err
	}
	return record, true, nil
}

// Remove deletes a favorite owned by ownerID. ok=false when the owner does
// not resolve or the record is not theirs.
func (s *GormStore) Remove(ownerID, id string) (bool, error) {
	if _, found, err := s.GetByID(ownerID); err != nil {
		return false, err
	} else if !found {
		return false, nil
	}
	res := s.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&FavoriteModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetByCatalogID looks up a favorite by its catalog identity.
func (s *GormStore) GetByCatalogID(ownerID, googleID string) (domain.FavoriteRecord, bool, error) {
	var model FavoriteModel
	err := s.db.Where("owner_id = ? AND google_id = ?", ownerID, googleID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.FavoriteRecord{}, false, nil
		}
		return domain.FavoriteRecord{}, false, err
	}
	record, err := favoriteFromModel(model)
	if err != nil {
		return domain.FavoriteRecord{}, false, err
	}
	return record, true, nil
}

// ListByOwner returns the owner's favorites, oldest first.
func (s *GormStore) ListByOwner(ownerID string) ([]domain.FavoriteRecord, error) {
	var models []FavoriteModel
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.FavoriteRecord, 0, len(models))
	for _, m := range models {
		record, err := favoriteFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, record)
	}
	return res, nil
}

func accountFromModel(m AccountModel) domain.Account {
	return domain.Account{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func favoriteToModel(ownerID string, book domain.SearchResultBook) (FavoriteModel, error) {
	authors, err := marshalStrings(book.Authors)
	if err != nil {
		return FavoriteModel{}, err
	}
	categories, err := marshalStrings(book.Categories)
	if err != nil {
		return FavoriteModel{}, err
	}
	return FavoriteModel{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		GoogleID:    book.GoogleID,
		Title:       book.Title,
		Authors:     authors,
		Thumbnail:   book.Thumbnail,
		Description: book.Description,
		PageCount:   book.PageCount,
		Categories:  categories,
		PreviewLink: book.PreviewLink,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func favoriteFromModel(m FavoriteModel) (domain.FavoriteRecord, error) {
	authors, err := unmarshalStrings(m.Authors)
	if err != nil {
		return domain.FavoriteRecord{}, fmt.Errorf("decode authors: %w", err)
	}
	categories, err := unmarshalStrings(m.Categories)
	if err != nil {
		return domain.FavoriteRecord{}, fmt.Errorf("decode categories: %w", err)
	}
	return domain.FavoriteRecord{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		GoogleID:    m.GoogleID,
		Title:       m.Title,
		Authors:     authors,
		Thumbnail:   m.Thumbnail,
		Description: m.Description,
		PageCount:   m.PageCount,
		Categories:  categories,
		PreviewLink: m.PreviewLink,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func marshalStrings(values []string) (datatypes.JSON, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func unmarshalStrings(data datatypes.JSON) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}
