package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edgesync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// ByEmail looks up an account by case-insensitive exact email match.
// Returns (nil, nil) when no account exists.
func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	return &user, nil
}

func (s *UserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, email, firstName, lastName, passwordHash string) (*models.User, error) {
	user := models.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return &user, nil
}

// GetMeta returns "" when the key is unset.
func (s *UserStore) GetMeta(ctx context.Context, userID uint, key string) (string, error) {
	var meta models.UserMeta
	err := s.db.WithContext(ctx).
		First(&meta, "user_id = ? AND meta_key = ?", userID, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read user meta %s: %w", key, err)
	}
	return meta.MetaValue, nil
}

func (s *UserStore) SetMeta(ctx context.Context, userID uint, key, value string) error {
	meta := models.UserMeta{
		UserID:    userID,
		MetaKey:   key,
		MetaValue: value,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value"}),
		}).
		Create(&meta).Error
	if err != nil {
		return fmt.Errorf("failed to set user meta %s: %w", key, err)
	}
	return nil
}

// PageAfter returns up to limit users with id > lastID in id order — the
// cursor query that backs the existing-user backfill flow.
func (s *UserStore) PageAfter(ctx context.Context, lastID uint, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to page users after %d: %w", lastID, err)
	}
	return users, nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}
