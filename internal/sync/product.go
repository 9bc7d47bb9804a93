package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"edgesync/internal/edge"
	"edgesync/internal/events"
	"edgesync/internal/models"
	"edgesync/internal/transport"
)

// productStep processes one chunk of an EDGE item import. Items are
// matched by their EDGE key; the flow uploads nothing back, so completion
// is just stats plus wipe.
func (c *Coordinator) productStep(ctx context.Context, job *Job, chunk int) (*Status, error) {
	raw, ok, err := c.Chunks.Get(ctx, job.ID, chunk)
	if err != nil {
		return c.fail(ctx, job, err)
	}
	if !ok {
		return c.fail(ctx, job, ErrStaleJob)
	}

	var items []edge.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return c.fail(ctx, job, fmt.Errorf("corrupt chunk %d: %w", chunk, err))
	}

	// The connection is only needed for image downloads; open it lazily
	// so chunks without images stay offline.
	var tr transport.Transport
	defer func() {
		if tr != nil {
			tr.Close()
		}
	}()
	dial := func() (transport.Transport, error) {
		if tr != nil {
			return tr, nil
		}
		var err error
		tr, err = c.Dial(job.Transport)
		return tr, err
	}

	for _, item := range items {
		c.importItem(ctx, job, item, dial)
	}

	c.Chunks.Delete(ctx, job.ID, chunk)
	job.CurrentChunk = chunk + 1
	if err := c.saveJob(ctx, job); err != nil {
		return c.fail(ctx, job, err)
	}

	if job.CurrentChunk >= job.TotalChunks {
		c.recordStats(ctx, job)
		if err := c.wipe(ctx, job.ID); err != nil {
			return nil, err
		}
		c.Logger.Info("Product import finished: %d processed, %d created, %d updated",
			job.Stats.Processed, job.Stats.Created, job.Stats.Updated)
		return &Status{
			Message:    fmt.Sprintf("Product import complete: %d processed", job.Stats.Processed),
			Progress:   100,
			IsComplete: true,
			Stats:      job.Stats,
		}, nil
	}

	next := job.CurrentChunk
	return &Status{
		Message:   fmt.Sprintf("Processed chunk %d of %d", chunk+1, job.TotalChunks),
		Progress:  progressPercent(job.CurrentChunk, job.TotalChunks),
		NextChunk: &next,
		Stats:     job.Stats,
	}, nil
}

func (c *Coordinator) importItem(ctx context.Context, job *Job, item edge.Item, dial func() (transport.Transport, error)) {
	job.Stats.Processed++

	if item.Key == "" {
		job.Stats.Skipped++
		return
	}

	id, found, err := c.Products.IDByEdgeID(ctx, item.Key)
	if err != nil {
		c.Logger.Error("Lookup failed for item %s: %v", item.Key, err)
		job.Stats.Skipped++
		return
	}

	if found {
		if err := c.Products.Update(ctx, id, item.PairValue.ItemDesc, item.PairValue.ItemRetailPrice); err != nil {
			c.Logger.Error("Failed to update product for item %s: %v", item.Key, err)
			job.Stats.Skipped++
			return
		}
		job.Stats.Updated++
		c.Events.Publish(ctx, events.TypeProductUpdated, strconv.FormatUint(uint64(id), 10),
			map[string]interface{}{"edge_key": item.Key})
	} else {
		id, err = c.Products.Create(ctx, item.Key, item.PairValue.ItemDesc, item.PairValue.ItemRetailPrice)
		if err != nil {
			c.Logger.Error("Failed to create product for item %s: %v", item.Key, err)
			job.Stats.Skipped++
			return
		}
		job.Stats.Created++
		c.Events.Publish(ctx, events.TypeProductCreated, strconv.FormatUint(uint64(id), 10),
			map[string]interface{}{"edge_key": item.Key})
	}

	if item.PairValue.ItemImage != "" {
		// Best effort: a missing or unreadable image never fails the item.
		if err := c.transferProductImage(ctx, job, id, item.PairValue.ItemImage, dial); err != nil {
			c.Logger.Error("Image transfer for item %s: %v", item.Key, err)
		}
	}
}

// transferProductImage downloads an item image from the inbox into the
// local uploads directory and attaches it as the product's primary image.
func (c *Coordinator) transferProductImage(ctx context.Context, job *Job, productID uint, imageName string, dial func() (transport.Transport, error)) error {
	tr, err := dial()
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	remote := job.InboxPath + "/" + imageName
	ok, err := tr.Exists(remote)
	if err != nil {
		return err
	}
	if !ok {
		c.Logger.Debug("Image %s not present in inbox", imageName)
		return nil
	}

	data, err := tr.Read(remote)
	if err != nil {
		return err
	}

	dir := filepath.Join(c.opts.UploadsDir, "edge-products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	local := filepath.Join(dir, filepath.Base(imageName))
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return err
	}

	meta, _ := json.Marshal(map[string]interface{}{
		"file":     filepath.Base(imageName),
		"filesize": len(data),
	})
	attachment := &models.Attachment{
		FileName: filepath.Base(imageName),
		FilePath: local,
		MimeType: mime.TypeByExtension(filepath.Ext(imageName)),
		Metadata: string(meta),
	}
	return c.Products.SetImage(ctx, productID, attachment)
}
