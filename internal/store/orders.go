package store

import (
	"context"
	"errors"
	"fmt"

	"edgesync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return &order, nil
}

func (s *OrderStore) Items(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load items of order %d: %w", orderID, err)
	}
	return items, nil
}

// MetaMap loads all meta rows of an order at once; the payment-card scan
// probes several keys.
func (s *OrderStore) MetaMap(ctx context.Context, orderID uint) (map[string]string, error) {
	var rows []models.OrderMeta
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load meta of order %d: %w", orderID, err)
	}
	meta := make(map[string]string, len(rows))
	for _, row := range rows {
		meta[row.MetaKey] = row.MetaValue
	}
	return meta, nil
}

func (s *OrderStore) SetMeta(ctx context.Context, orderID uint, key, value string) error {
	meta := models.OrderMeta{
		OrderID:   orderID,
		MetaKey:   key,
		MetaValue: value,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value"}),
		}).
		Create(&meta).Error
	if err != nil {
		return fmt.Errorf("failed to set order meta %s: %w", key, err)
	}
	return nil
}
