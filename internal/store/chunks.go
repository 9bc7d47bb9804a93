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

// ChunkStore holds the expiring slices of a source file between steps.
type ChunkStore struct {
	db *gorm.DB
}

func NewChunkStore(db *gorm.DB) *ChunkStore {
	return &ChunkStore{db: db}
}

func (s *ChunkStore) Put(ctx context.Context, jobID string, idx int, data []byte, ttl time.Duration) error {
	chunk := models.SyncChunk{
		JobID:     jobID,
		Idx:       idx,
		Data:      string(data),
		ExpiresAt: time.Now().Add(ttl),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}, {Name: "idx"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
		}).
		Create(&chunk).Error
	if err != nil {
		return fmt.Errorf("failed to store chunk %d of %s: %w", idx, jobID, err)
	}
	return nil
}

// Get returns the chunk data, or ok=false when the chunk is missing or
// its time-to-live has passed. An expired chunk is as gone as a deleted
// one; the job cannot be resumed past it.
func (s *ChunkStore) Get(ctx context.Context, jobID string, idx int) ([]byte, bool, error) {
	var chunk models.SyncChunk
	err := s.db.WithContext(ctx).
		First(&chunk, "job_id = ? AND idx = ?", jobID, idx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load chunk %d of %s: %w", idx, jobID, err)
	}
	if time.Now().After(chunk.ExpiresAt) {
		s.db.WithContext(ctx).Delete(&models.SyncChunk{}, "job_id = ? AND idx = ?", jobID, idx)
		return nil, false, nil
	}
	return []byte(chunk.Data), true, nil
}

func (s *ChunkStore) Delete(ctx context.Context, jobID string, idx int) error {
	if err := s.db.WithContext(ctx).Delete(&models.SyncChunk{}, "job_id = ? AND idx = ?", jobID, idx).Error; err != nil {
		return fmt.Errorf("failed to delete chunk %d of %s: %w", idx, jobID, err)
	}
	return nil
}

// DeleteJob drops every remaining chunk for a job, used on finalize and
// on wipe so no blob outlives its job.
func (s *ChunkStore) DeleteJob(ctx context.Context, jobID string) error {
	if err := s.db.WithContext(ctx).Delete(&models.SyncChunk{}, "job_id = ?", jobID).Error; err != nil {
		return fmt.Errorf("failed to delete chunks of %s: %w", jobID, err)
	}
	return nil
}
