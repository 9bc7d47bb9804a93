package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edgesync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

// IDByEdgeID resolves a local product from its EDGE item key, stored in
// product meta. Matching is always by EDGE id, never by local primary key.
func (s *ProductStore) IDByEdgeID(ctx context.Context, edgeID string) (uint, bool, error) {
	var meta models.ProductMeta
	err := s.db.WithContext(ctx).
		First(&meta, "meta_key = ? AND meta_value = ?", models.MetaEdgeID, edgeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up product by edge id: %w", err)
	}
	return meta.ProductID, true, nil
}

// Create inserts a published product and records its EDGE id meta.
func (s *ProductStore) Create(ctx context.Context, edgeID, name string, price float64) (uint, error) {
	product := models.Product{
		Name:      name,
		Price:     price,
		Status:    models.ProductStatusPublished,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return tx.Create(&models.ProductMeta{
			ProductID: product.ID,
			MetaKey:   models.MetaEdgeID,
			MetaValue: edgeID,
		}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create product %s: %w", name, err)
	}
	return product.ID, nil
}

func (s *ProductStore) Update(ctx context.Context, id uint, name string, price float64) error {
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":       name,
			"price":      price,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return nil
}

// EdgeID returns the EDGE item key of a product, "" when it was never
// linked by an import.
func (s *ProductStore) EdgeID(ctx context.Context, productID uint) (string, error) {
	var meta models.ProductMeta
	err := s.db.WithContext(ctx).
		First(&meta, "product_id = ? AND meta_key = ?", productID, models.MetaEdgeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read edge id of product %d: %w", productID, err)
	}
	return meta.MetaValue, nil
}

func (s *ProductStore) SetMeta(ctx context.Context, productID uint, key, value string) error {
	meta := models.ProductMeta{
		ProductID: productID,
		MetaKey:   key,
		MetaValue: value,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value"}),
		}).
		Create(&meta).Error
	if err != nil {
		return fmt.Errorf("failed to set product meta %s: %w", key, err)
	}
	return nil
}

// SetImage registers a downloaded file as a media attachment and makes it
// the product's primary image.
func (s *ProductStore) SetImage(ctx context.Context, productID uint, attachment *models.Attachment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attachment.CreatedAt = time.Now()
		if err := tx.Create(attachment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).
			Where("id = ?", productID).
			Update("image_id", attachment.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to set image for product %d: %w", productID, err)
	}
	return nil
}
