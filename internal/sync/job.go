package sync

import (
	"errors"
	"time"

	"edgesync/internal/edge"
	"edgesync/internal/transport"
)

// Flow names one of the three chunked synchronization flows.
type Flow string

const (
	FlowCustomerImport Flow = "customer-import"
	FlowProductImport  Flow = "product-import"
	FlowUserBackfill   Flow = "user-backfill"
)

// Source file suffixes matched in the EDGE inbox. The newest file with
// the suffix wins.
const (
	customerListSuffix = "FullCustomerList.json"
	itemListSuffix     = "ItemList.json"
)

var (
	// ErrNoSourceFile: the inbox holds no file with the expected suffix.
	// Nothing was persisted; the flow can be retried at chunk 0.
	ErrNoSourceFile = errors.New("no source file found in inbox")

	// ErrStaleJob: a chunk blob is missing or expired. The job has been
	// wiped; the only recovery is a fresh start from chunk 0.
	ErrStaleJob = errors.New("chunk data missing or expired, restart from chunk 0")

	// ErrNoJob: a non-zero chunk was requested but no job is in progress.
	ErrNoJob = errors.New("no job in progress, start from chunk 0")
)

// Job is the complete persistent state of one flow invocation. It is
// serialized as a single record so partial job state is unrepresentable.
type Job struct {
	ID           string  `json:"id"`
	Flow         Flow    `json:"flow"`
	ChunkSize    int     `json:"chunk_size"`
	TotalItems   int     `json:"total_items"`
	TotalChunks  int     `json:"total_chunks"`
	CurrentChunk int     `json:"current_chunk"`
	Stats        Stats   `json:"stats"`

	// NewRecords accumulates the customers newly linked during an import;
	// they form the feedback file uploaded at finalize.
	NewRecords []edge.Customer `json:"new_records,omitempty"`

	// Schema metadata carried through from the source file, never computed.
	MaxAddresses int `json:"max_addresses,omitempty"`
	MaxEmails    int `json:"max_emails,omitempty"`
	MaxPhones    int `json:"max_phones,omitempty"`

	InboxPath  string `json:"inbox_path,omitempty"`
	OutboxPath string `json:"outbox_path,omitempty"`

	// Snapshot of the credentials the job was started with, so a resume
	// or finalize is unaffected by configuration changes made meanwhile.
	Transport transport.Config `json:"transport"`

	// Cursor for the user-backfill flow.
	LastUserID uint `json:"last_user_id,omitempty"`

	StartedAt time.Time `json:"started_at"`
}

type Stats struct {
	Total         int `json:"total"`
	Processed     int `json:"processed"`
	Created       int `json:"created"`
	Updated       int `json:"updated"`
	Skipped       int `json:"skipped"`
	Synced        int `json:"synced,omitempty"`
	AlreadySynced int `json:"already_synced,omitempty"`
	Exported      int `json:"exported,omitempty"`
}

// Status is what a driving surface relays back to its caller after each
// chunk step.
type Status struct {
	Message    string `json:"message"`
	Progress   int    `json:"progress"`
	NextChunk  *int   `json:"nextChunk,omitempty"`
	IsComplete bool   `json:"isComplete"`
	Stats      Stats  `json:"stats"`
}

func progressPercent(done, total int) int {
	if total <= 0 {
		return 100
	}
	p := (done*100 + total/2) / total
	if p > 100 {
		p = 100
	}
	return p
}
