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

// JobStore persists each sync job as a single serialized record, so a job
// either exists in full or not at all.
type JobStore struct {
	db *gorm.DB
}

func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	var rec models.SyncJobRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	return []byte(rec.Data), true, nil
}

func (s *JobStore) Put(ctx context.Context, id string, data []byte) error {
	rec := models.SyncJobRecord{
		ID:        id,
		Data:      string(data),
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", id, err)
	}
	return nil
}

func (s *JobStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.SyncJobRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return nil
}
