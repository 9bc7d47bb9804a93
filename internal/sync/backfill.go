package sync

import (
	"context"
	"fmt"
	"strconv"

	"edgesync/internal/events"
	"edgesync/internal/models"
)

// backfillStep pushes one page of never-synced local accounts to EDGE.
// The flow walks the user table with an id cursor, so accounts created
// mid-run behind the cursor are simply picked up by the next run.
func (c *Coordinator) backfillStep(ctx context.Context, job *Job) (*Status, error) {
	page, err := c.Users.PageAfter(ctx, job.LastUserID, job.ChunkSize)
	if err != nil {
		return c.fail(ctx, job, err)
	}

	if len(page) == 0 {
		return c.finishBackfill(ctx, job)
	}

	tr, err := c.Dial(job.Transport)
	if err != nil {
		return c.fail(ctx, job, fmt.Errorf("connection failed: %w", err))
	}
	defer tr.Close()

	for i := range page {
		user := &page[i]
		job.Stats.Processed++

		if user.Email == "" {
			job.Stats.Skipped++
			continue
		}

		synced, err := c.Users.GetMeta(ctx, user.ID, models.MetaEdgeSync)
		if err != nil {
			c.Logger.Error("Failed to read sync meta for account %d: %v", user.ID, err)
			job.Stats.Skipped++
			continue
		}
		if synced != "" {
			job.Stats.AlreadySynced++
			continue
		}

		if err := c.Exporter.ExportCustomer(ctx, tr, job.OutboxPath, user); err != nil {
			c.Logger.Error("Failed to export account %d: %v", user.ID, err)
			job.Stats.Skipped++
			continue
		}
		job.Stats.Synced++
		c.Events.Publish(ctx, events.TypeCustomerSynced, strconv.FormatUint(uint64(user.ID), 10),
			map[string]interface{}{"email": user.Email})
	}

	job.LastUserID = page[len(page)-1].ID
	job.CurrentChunk++
	if err := c.saveJob(ctx, job); err != nil {
		return c.fail(ctx, job, err)
	}

	// A short page means the table is exhausted; don't force the caller
	// through an extra empty round trip.
	if len(page) < job.ChunkSize {
		return c.finishBackfill(ctx, job)
	}

	next := job.CurrentChunk
	return &Status{
		Message:   fmt.Sprintf("Processed %d of %d accounts", job.Stats.Processed, job.Stats.Total),
		Progress:  progressPercent(job.Stats.Processed, job.Stats.Total),
		NextChunk: &next,
		Stats:     job.Stats,
	}, nil
}

func (c *Coordinator) finishBackfill(ctx context.Context, job *Job) (*Status, error) {
	c.recordStats(ctx, job)
	if err := c.wipe(ctx, job.ID); err != nil {
		return nil, err
	}
	c.Logger.Info("Backfill finished: %d processed, %d synced, %d already synced, %d skipped",
		job.Stats.Processed, job.Stats.Synced, job.Stats.AlreadySynced, job.Stats.Skipped)
	return &Status{
		Message:    fmt.Sprintf("Backfill complete: %d accounts synced", job.Stats.Synced),
		Progress:   100,
		IsComplete: true,
		Stats:      job.Stats,
	}, nil
}
