package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"edgesync/internal/edge"
	"edgesync/internal/logger"
	"edgesync/internal/mailer"
	"edgesync/internal/models"
	"edgesync/internal/transport"
)

// JobStore persists the single serialized job record per flow.
type JobStore interface {
	Get(ctx context.Context, id string) ([]byte, bool, error)
	Put(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
}

// ChunkStore holds the expiring chunk blobs sliced from a source file.
// Get reports ok=false for a missing or expired chunk.
type ChunkStore interface {
	Put(ctx context.Context, jobID string, idx int, data []byte, ttl time.Duration) error
	Get(ctx context.Context, jobID string, idx int) ([]byte, bool, error)
	Delete(ctx context.Context, jobID string, idx int) error
	DeleteJob(ctx context.Context, jobID string) error
}

// StateStore keeps the durable values that outlive any single job, most
// importantly the global outbound file counter.
type StateStore interface {
	OutboundSeq(ctx context.Context) (int64, error)
	BumpOutboundSeq(ctx context.Context) error
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
}

type UserStore interface {
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, email, firstName, lastName, passwordHash string) (*models.User, error)
	GetMeta(ctx context.Context, userID uint, key string) (string, error)
	SetMeta(ctx context.Context, userID uint, key, value string) error
	PageAfter(ctx context.Context, lastID uint, limit int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type ProductStore interface {
	IDByEdgeID(ctx context.Context, edgeID string) (uint, bool, error)
	Create(ctx context.Context, edgeID, name string, price float64) (uint, error)
	Update(ctx context.Context, id uint, name string, price float64) error
	EdgeID(ctx context.Context, productID uint) (string, error)
	SetImage(ctx context.Context, productID uint, attachment *models.Attachment) error
}

type Publisher interface {
	Publish(ctx context.Context, eventType, entityID string, data map[string]interface{})
}

// Options tunes one coordinator instance. Namespace keeps the interactive
// and scheduled variants of the same flow from colliding: each gets its
// own job record and chunk rows.
type Options struct {
	Namespace string
	ChunkTTL  time.Duration

	CustomerChunkSize int
	ProductChunkSize  int
	BackfillChunkSize int

	RemoteFolder string
	Transport    transport.Config

	UploadsDir string
	SiteURL    string
}

// Deps are the coordinator's collaborators. Everything is an interface or
// function so the chunk machinery is testable without a database or a
// remote server.
type Deps struct {
	Logger      *logger.Logger
	Dial        transport.Dialer
	Jobs        JobStore
	Chunks      ChunkStore
	State       StateStore
	Users       UserStore
	Products    ProductStore
	Transformer *edge.Transformer
	Exporter    *Exporter
	Mailer      mailer.Mailer
	Events      Publisher
}

// Coordinator drives the three chunked flows. All flows share the same
// life cycle: bootstrap at chunk 0, one chunk per call, finalize or wipe.
type Coordinator struct {
	opts Options
	Deps
}

func New(opts Options, deps Deps) *Coordinator {
	if opts.ChunkTTL <= 0 {
		opts.ChunkTTL = time.Hour
	}
	return &Coordinator{opts: opts, Deps: deps}
}

func (c *Coordinator) jobID(flow Flow) string {
	return c.opts.Namespace + ":" + string(flow)
}

// StartOrResume runs one chunk of a flow. Chunk 0 always bootstraps a
// fresh job, discarding whatever was in progress; any other chunk resumes
// the stored job or fails with ErrNoJob.
func (c *Coordinator) StartOrResume(ctx context.Context, flow Flow, chunk int) (*Status, error) {
	id := c.jobID(flow)

	var job *Job
	if chunk == 0 {
		if err := c.wipe(ctx, id); err != nil {
			return nil, err
		}
		var err error
		job, err = c.bootstrap(ctx, flow, id)
		if err != nil {
			return nil, err
		}
	} else {
		var found bool
		var err error
		job, found, err = c.loadJob(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrNoJob
		}
	}

	return c.step(ctx, job, chunk)
}

// Advance runs the next pending chunk, bootstrapping only when no job is
// in progress. This is the scheduled surface: the caller never tracks a
// chunk index.
func (c *Coordinator) Advance(ctx context.Context, flow Flow) (*Status, error) {
	id := c.jobID(flow)
	job, found, err := c.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		job, err = c.bootstrap(ctx, flow, id)
		if err != nil {
			return nil, err
		}
	}
	return c.step(ctx, job, job.CurrentChunk)
}

func (c *Coordinator) step(ctx context.Context, job *Job, chunk int) (*Status, error) {
	switch job.Flow {
	case FlowUserBackfill:
		return c.backfillStep(ctx, job)
	case FlowCustomerImport:
		return c.customerStep(ctx, job, chunk)
	case FlowProductImport:
		return c.productStep(ctx, job, chunk)
	default:
		return nil, fmt.Errorf("unknown flow %q", job.Flow)
	}
}

// bootstrap builds a fresh job. For the import flows it downloads the
// newest source file from the inbox and slices it into chunk blobs; for
// the backfill it only counts users. Nothing is persisted on error, so a
// failed bootstrap can simply be retried.
func (c *Coordinator) bootstrap(ctx context.Context, flow Flow, id string) (*Job, error) {
	job := &Job{
		ID:        id,
		Flow:      flow,
		Transport: c.opts.Transport,
		StartedAt: time.Now(),
	}

	if flow == FlowUserBackfill {
		total, err := c.Users.Count(ctx)
		if err != nil {
			return nil, err
		}
		job.ChunkSize = c.opts.BackfillChunkSize
		job.TotalItems = int(total)
		job.Stats.Total = int(total)
		job.OutboxPath = transport.OutboxPath(c.opts.RemoteFolder)
		if err := c.saveJob(ctx, job); err != nil {
			return nil, err
		}
		return job, nil
	}

	suffix := customerListSuffix
	job.ChunkSize = c.opts.CustomerChunkSize
	if flow == FlowProductImport {
		suffix = itemListSuffix
		job.ChunkSize = c.opts.ProductChunkSize
	}
	job.InboxPath = transport.InboxPath(c.opts.RemoteFolder)
	job.OutboxPath = transport.OutboxPath(c.opts.RemoteFolder)

	tr, err := c.Dial(job.Transport)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	defer tr.Close()

	name, err := latestFile(tr, job.InboxPath, suffix)
	if err != nil {
		return nil, err
	}
	raw, err := tr.Read(job.InboxPath + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", name, err)
	}

	switch flow {
	case FlowCustomerImport:
		var list edge.CustomerList
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		job.TotalItems = len(list.Customers)
		job.MaxAddresses = list.MaxAddresses
		job.MaxEmails = list.MaxEmails
		job.MaxPhones = list.MaxPhones
		job.NewRecords = []edge.Customer{}
		if err := sliceChunks(ctx, c.Chunks, job, len(list.Customers), c.opts.ChunkTTL, func(lo, hi int) interface{} {
			return list.Customers[lo:hi]
		}); err != nil {
			return nil, err
		}
	case FlowProductImport:
		var list edge.ItemList
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		job.TotalItems = len(list.Items)
		if err := sliceChunks(ctx, c.Chunks, job, len(list.Items), c.opts.ChunkTTL, func(lo, hi int) interface{} {
			return list.Items[lo:hi]
		}); err != nil {
			return nil, err
		}
	}

	job.TotalChunks = (job.TotalItems + job.ChunkSize - 1) / job.ChunkSize
	job.Stats.Total = job.TotalItems
	if err := c.saveJob(ctx, job); err != nil {
		c.Chunks.DeleteJob(ctx, job.ID)
		return nil, err
	}
	c.Logger.Info("Bootstrapped %s: %s, %d records in %d chunks", job.Flow, name, job.TotalItems, job.TotalChunks)
	return job, nil
}

// latestFile picks the newest inbox file whose name ends in suffix.
func latestFile(tr transport.Transport, dir, suffix string) (string, error) {
	files, err := tr.List(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}
	names := make([]string, 0, len(files))
	for name, info := range files {
		if !info.IsDir && strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", ErrNoSourceFile
	}
	sort.Slice(names, func(i, j int) bool {
		return files[names[i]].ModTime.After(files[names[j]].ModTime)
	})
	return names[0], nil
}

func sliceChunks(ctx context.Context, chunks ChunkStore, job *Job, total int, ttl time.Duration, slice func(lo, hi int) interface{}) error {
	for idx, lo := 0, 0; lo < total; idx, lo = idx+1, lo+job.ChunkSize {
		hi := lo + job.ChunkSize
		if hi > total {
			hi = total
		}
		data, err := json.Marshal(slice(lo, hi))
		if err != nil {
			return err
		}
		if err := chunks.Put(ctx, job.ID, idx, data, ttl); err != nil {
			chunks.DeleteJob(ctx, job.ID)
			return fmt.Errorf("failed to store chunk %d: %w", idx, err)
		}
	}
	return nil
}

func (c *Coordinator) loadJob(ctx context.Context, id string) (*Job, bool, error) {
	raw, found, err := c.Jobs.Get(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		// Unreadable state is unrecoverable; drop it so chunk 0 works.
		c.wipe(ctx, id)
		return nil, false, fmt.Errorf("corrupt job record %s: %w", id, err)
	}
	return &job, true, nil
}

func (c *Coordinator) saveJob(ctx context.Context, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := c.Jobs.Put(ctx, job.ID, raw); err != nil {
		return fmt.Errorf("failed to persist job %s: %w", job.ID, err)
	}
	return nil
}

// wipe removes every trace of a job. After any mid-flow failure this is
// the only transition: the next run starts from chunk 0.
func (c *Coordinator) wipe(ctx context.Context, id string) error {
	if err := c.Chunks.DeleteJob(ctx, id); err != nil {
		return err
	}
	return c.Jobs.Delete(ctx, id)
}

// fail wipes the job and returns the error that killed it.
func (c *Coordinator) fail(ctx context.Context, job *Job, err error) (*Status, error) {
	c.Logger.Error("%s failed at chunk %d: %v", job.Flow, job.CurrentChunk, err)
	if werr := c.wipe(ctx, job.ID); werr != nil {
		c.Logger.Error("Failed to wipe job %s: %v", job.ID, werr)
	}
	return nil, err
}

// recordStats stores the final stats of a run so the status endpoint can
// report the last outcome after the job itself is gone.
func (c *Coordinator) recordStats(ctx context.Context, job *Job) {
	raw, err := json.Marshal(job.Stats)
	if err != nil {
		return
	}
	key := string(job.Flow) + ":last_run"
	if err := c.State.Set(ctx, key, string(raw)); err != nil {
		c.Logger.Error("Failed to record stats for %s: %v", job.Flow, err)
	}
}

// LastRun returns the stats recorded by the most recent completed run of
// a flow, ok=false when the flow never completed.
func (c *Coordinator) LastRun(ctx context.Context, flow Flow) (Stats, bool, error) {
	raw, err := c.State.Get(ctx, string(flow)+":last_run")
	if err != nil {
		return Stats{}, false, err
	}
	if raw == "" {
		return Stats{}, false, nil
	}
	var stats Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return Stats{}, false, err
	}
	return stats, true, nil
}

// InProgress reports whether a job exists for the flow, with its current
// position when it does.
func (c *Coordinator) InProgress(ctx context.Context, flow Flow) (*Job, bool, error) {
	return c.loadJob(ctx, c.jobID(flow))
}
