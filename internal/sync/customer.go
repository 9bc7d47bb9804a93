package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"edgesync/internal/edge"
	"edgesync/internal/events"
	"edgesync/internal/models"

	"github.com/google/uuid"
)

// customerStep processes one chunk of an EDGE customer import: link each
// record to a local account by email, create accounts where none exist,
// and collect the records that were never synced before for the feedback
// upload at the end.
func (c *Coordinator) customerStep(ctx context.Context, job *Job, chunk int) (*Status, error) {
	raw, ok, err := c.Chunks.Get(ctx, job.ID, chunk)
	if err != nil {
		return c.fail(ctx, job, err)
	}
	if !ok {
		return c.fail(ctx, job, ErrStaleJob)
	}

	var records []edge.Customer
	if err := json.Unmarshal(raw, &records); err != nil {
		return c.fail(ctx, job, fmt.Errorf("corrupt chunk %d: %w", chunk, err))
	}

	for _, rec := range records {
		c.importCustomer(ctx, job, rec)
	}

	c.Chunks.Delete(ctx, job.ID, chunk)
	job.CurrentChunk = chunk + 1
	if err := c.saveJob(ctx, job); err != nil {
		return c.fail(ctx, job, err)
	}

	if job.CurrentChunk >= job.TotalChunks {
		if err := c.finalizeCustomerImport(ctx, job); err != nil {
			return c.fail(ctx, job, err)
		}
		return &Status{
			Message:    fmt.Sprintf("Customer import complete: %d processed, %d new accounts", job.Stats.Processed, job.Stats.Created),
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

// importCustomer handles a single record. Per-record problems are counted
// and logged, never fatal; only infrastructure failures abort a chunk.
func (c *Coordinator) importCustomer(ctx context.Context, job *Job, rec edge.Customer) {
	job.Stats.Processed++

	email := rec.FirstEmail()
	if email == "" {
		c.Logger.Debug("Skipping customer %s: no email on record", rec.Key)
		job.Stats.Skipped++
		return
	}

	user, err := c.Users.ByEmail(ctx, email)
	if err != nil {
		c.Logger.Error("Lookup failed for %s: %v", email, err)
		job.Stats.Skipped++
		return
	}

	if user == nil {
		user, err = c.createAccount(ctx, email, rec)
		if err != nil {
			c.Logger.Error("Failed to create account for %s: %v", email, err)
			job.Stats.Skipped++
			return
		}
		job.Stats.Created++
		c.Events.Publish(ctx, events.TypeCustomerCreated, strconv.FormatUint(uint64(user.ID), 10),
			map[string]interface{}{"email": email, "edge_key": rec.Key})
	} else {
		job.Stats.Updated++
		c.Events.Publish(ctx, events.TypeCustomerUpdated, strconv.FormatUint(uint64(user.ID), 10),
			map[string]interface{}{"email": email, "edge_key": rec.Key})
	}

	if err := c.linkCustomer(ctx, user.ID, rec); err != nil {
		c.Logger.Error("Failed to link %s to account %d: %v", rec.Key, user.ID, err)
		job.Stats.Skipped++
		return
	}

	// First-ever link: patch our account id into the transfer block and
	// queue the record for the feedback file. The synced-before latch is
	// one-way, so re-imports never re-export.
	syncedBefore, err := c.Users.GetMeta(ctx, user.ID, models.MetaEdgeSyncedBefore)
	if err != nil {
		c.Logger.Error("Failed to read sync latch for account %d: %v", user.ID, err)
		return
	}
	if syncedBefore == "" {
		if err := c.Users.SetMeta(ctx, user.ID, models.MetaEdgeSyncedBefore, "1"); err != nil {
			c.Logger.Error("Failed to set sync latch for account %d: %v", user.ID, err)
			return
		}
		rec.PairValue.CustomerTransfer.WebTransferWebID = user.ID
		job.NewRecords = append(job.NewRecords, rec)
	}
}

// createAccount registers a storefront user for an EDGE customer and sends
// the account-setup mail. Mail failures are logged; the account stands.
func (c *Coordinator) createAccount(ctx context.Context, email string, rec edge.Customer) (*models.User, error) {
	// The account starts with an unusable random password; the customer
	// sets a real one through the reset link.
	hash := uuid.NewString() + uuid.NewString()
	user, err := c.Users.Create(ctx, email, rec.PairValue.CustomerFirstName, rec.PairValue.CustomerLastName, hash)
	if err != nil {
		return nil, err
	}

	resetKey := uuid.NewString()
	if err := c.Users.SetMeta(ctx, user.ID, models.MetaPasswordResetKey, resetKey); err != nil {
		c.Logger.Error("Failed to store reset key for %s: %v", email, err)
		return user, nil
	}
	resetURL := fmt.Sprintf("%s/account/set-password?key=%s&login=%s", c.opts.SiteURL, resetKey, url.QueryEscape(email))
	if err := c.Mailer.SendAccountSetup(email, rec.PairValue.CustomerFirstName, rec.PairValue.CustomerLastName, resetURL); err != nil {
		c.Logger.Error("%v", err)
	}
	return user, nil
}

// linkCustomer stamps the EDGE linkage meta on an account. Runs on every
// import so a record that moved to a new EDGE id is re-linked.
func (c *Coordinator) linkCustomer(ctx context.Context, userID uint, rec edge.Customer) error {
	if err := c.Users.SetMeta(ctx, userID, models.MetaEdgeSync, "1"); err != nil {
		return err
	}
	if err := c.Users.SetMeta(ctx, userID, models.MetaEdgeKey, rec.Key); err != nil {
		return err
	}
	if id := metaString(rec.PairValue.CustomerID); id != "" {
		if err := c.Users.SetMeta(ctx, userID, models.MetaEdgeID, id); err != nil {
			return err
		}
	}
	return c.Users.SetMeta(ctx, userID, models.MetaEdgeLastSync, time.Now().Format(time.RFC3339))
}

// finalizeCustomerImport uploads the feedback file listing every account
// that got its first EDGE link during this run, then retires the job. The
// upload happens even when no records are new; EDGE treats the empty list
// as a completion marker.
func (c *Coordinator) finalizeCustomerImport(ctx context.Context, job *Job) error {
	list := edge.CustomerList{
		Customers:    job.NewRecords,
		MaxAddresses: job.MaxAddresses,
		MaxEmails:    job.MaxEmails,
		MaxPhones:    job.MaxPhones,
	}
	payload, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}

	tr, err := c.Dial(job.Transport)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer tr.Close()

	seq, err := c.State.OutboundSeq(ctx)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%d-CustomerList.json", seq)
	if err := tr.Write(job.OutboxPath+"/"+name, payload); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err := c.State.BumpOutboundSeq(ctx); err != nil {
		return err
	}

	job.Stats.Exported = len(job.NewRecords)
	c.recordStats(ctx, job)
	c.Logger.Info("Customer import finished: uploaded %s with %d new records", name, len(job.NewRecords))
	return c.wipe(ctx, job.ID)
}

// metaString renders a loosely-typed JSON scalar as meta text. EDGE emits
// ids sometimes as numbers, sometimes as strings.
func metaString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
