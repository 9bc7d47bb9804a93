package models

import "time"

// SyncJobRecord holds one whole serialized sync job. Keeping the job as a
// single row means "no job" and "half-written job" cannot coexist.
type SyncJobRecord struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Data      string    `json:"data" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SyncJobRecord) TableName() string { return "sync_jobs" }

// SyncChunk is one expiring slice of a source file. Chunks are deleted as
// soon as they are consumed, not when the job finishes.
type SyncChunk struct {
	JobID     string    `json:"job_id" gorm:"primaryKey;column:job_id"`
	Idx       int       `json:"idx" gorm:"primaryKey"`
	Data      string    `json:"data" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
}

func (SyncChunk) TableName() string { return "sync_chunks" }

type SyncState struct {
	StateKey   string    `json:"state_key" gorm:"primaryKey;column:state_key"`
	StateValue string    `json:"state_value" gorm:"column:state_value"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SyncState) TableName() string { return "sync_state" }
