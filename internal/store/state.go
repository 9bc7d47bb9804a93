package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"edgesync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const outboundSeqKey = "outbound_seq"

// StateStore keeps the few durable scalars that outlive any single job:
// the global outbound filename counter and last-run statistics.
type StateStore struct {
	db *gorm.DB
}

func NewStateStore(db *gorm.DB) *StateStore {
	return &StateStore{db: db}
}

// OutboundSeq returns the current outbound filename counter. The counter
// is shared across every flow and entity kind so EDGE can process
// uploaded files in strict arrival order.
func (s *StateStore) OutboundSeq(ctx context.Context) (int64, error) {
	v, err := s.get(ctx, outboundSeqKey)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 1, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt outbound counter %q: %w", v, err)
	}
	return n, nil
}

// BumpOutboundSeq advances the counter after a successful upload.
func (s *StateStore) BumpOutboundSeq(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.SyncState
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "state_key = ?", outboundSeqKey).Error
		current := int64(1)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			if n, perr := strconv.ParseInt(row.StateValue, 10, 64); perr == nil {
				current = n
			}
		}
		return putState(tx, outboundSeqKey, strconv.FormatInt(current+1, 10))
	})
}

func (s *StateStore) Set(ctx context.Context, key, value string) error {
	return putState(s.db.WithContext(ctx), key, value)
}

func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	return s.get(ctx, key)
}

func (s *StateStore) get(ctx context.Context, key string) (string, error) {
	var row models.SyncState
	err := s.db.WithContext(ctx).First(&row, "state_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read state %s: %w", key, err)
	}
	return row.StateValue, nil
}

func putState(tx *gorm.DB, key, value string) error {
	row := models.SyncState{
		StateKey:   key,
		StateValue: value,
		UpdatedAt:  time.Now(),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"state_value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write state %s: %w", key, err)
	}
	return nil
}
