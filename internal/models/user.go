package models

import "time"

// User mirrors a storefront account. EDGE linkage lives in UserMeta under
// the _edge_* keys, never in the row itself.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"unique;not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserMeta struct {
	UserID    uint   `json:"user_id" gorm:"primaryKey"`
	MetaKey   string `json:"meta_key" gorm:"primaryKey"`
	MetaValue string `json:"meta_value"`
}

func (UserMeta) TableName() string { return "user_meta" }

// Meta keys linking local records to EDGE.
const (
	MetaEdgeSync         = "_edge_sync"
	MetaEdgeKey          = "_edge_key"
	MetaEdgeID           = "_edge_id"
	MetaEdgeSyncedBefore = "_edge_synced_before"
	MetaEdgeLastSync     = "_edge_last_sync"

	// MetaPasswordResetKey holds the one-time key mailed to accounts
	// created by an import.
	MetaPasswordResetKey = "_password_reset_key"
)
