package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"edgesync/internal/edge"
	"edgesync/internal/logger"
	"edgesync/internal/models"
	"edgesync/internal/transport"
)

// Billing meta keys copied into an exported customer.
const (
	metaBillingPhone    = "billing_phone"
	metaBillingCompany  = "billing_company"
	metaBillingAddress1 = "billing_address_1"
	metaBillingAddress2 = "billing_address_2"
	metaBillingCity     = "billing_city"
	metaBillingState    = "billing_state"
	metaBillingPostcode = "billing_postcode"
	metaBillingCountry  = "billing_country"
)

// Exporter pushes single local accounts to EDGE as {n}_NEW-CustomerList
// files. Both the backfill flow and the order sync use it, so the meta
// stamping and counter handling stay in one place.
type Exporter struct {
	Logger      *logger.Logger
	State       StateStore
	Users       UserStore
	Transformer *edge.Transformer
}

// ExportCustomer uploads one account as a one-record customer list and
// stamps the linkage meta on success. The outbound counter is bumped only
// after the upload succeeds; a failed upload leaves the account unmarked
// so a later attempt retries from scratch.
func (e *Exporter) ExportCustomer(ctx context.Context, tr transport.Transport, outboxPath string, user *models.User) error {
	local, err := e.localCustomer(ctx, user)
	if err != nil {
		return err
	}

	list := e.Transformer.BuildCustomerList(local)
	payload, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}

	seq, err := e.State.OutboundSeq(ctx)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%d_NEW-CustomerList.json", seq)
	if err := tr.Write(outboxPath+"/"+name, payload); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err := e.State.BumpOutboundSeq(ctx); err != nil {
		return err
	}

	if err := e.stampExported(ctx, user.ID, local); err != nil {
		// Upload succeeded; the stamp is what prevents a duplicate next
		// time, so surface the failure.
		return fmt.Errorf("uploaded %s but failed to mark account %d: %w", name, user.ID, err)
	}
	e.Logger.Info("Exported account %d as %s", user.ID, name)
	return nil
}

// localCustomer assembles the exportable view of an account from its row
// and billing meta. Accounts never seen by EDGE get a deterministic
// WEB-CUSTOMER key so re-exports stay idempotent on the EDGE side.
func (e *Exporter) localCustomer(ctx context.Context, user *models.User) (edge.LocalCustomer, error) {
	local := edge.LocalCustomer{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}

	meta := map[string]*string{
		metaBillingPhone:    &local.BillingPhone,
		metaBillingCompany:  &local.BillingCompany,
		metaBillingAddress1: &local.BillingAddress1,
		metaBillingAddress2: &local.BillingAddress2,
		metaBillingCity:     &local.BillingCity,
		metaBillingState:    &local.BillingState,
		metaBillingPostcode: &local.BillingPostcode,
		metaBillingCountry:  &local.BillingCountry,
		models.MetaEdgeKey:  &local.EdgeKey,
		models.MetaEdgeID:   &local.EdgeID,
	}
	for key, dst := range meta {
		value, err := e.Users.GetMeta(ctx, user.ID, key)
		if err != nil {
			return edge.LocalCustomer{}, err
		}
		*dst = value
	}

	if local.EdgeKey == "" {
		local.EdgeKey = "WEB-CUSTOMER-" + strconv.FormatUint(uint64(user.ID), 10)
	}
	return local, nil
}

func (e *Exporter) stampExported(ctx context.Context, userID uint, local edge.LocalCustomer) error {
	if err := e.Users.SetMeta(ctx, userID, models.MetaEdgeSync, "1"); err != nil {
		return err
	}
	if err := e.Users.SetMeta(ctx, userID, models.MetaEdgeSyncedBefore, "1"); err != nil {
		return err
	}
	if err := e.Users.SetMeta(ctx, userID, models.MetaEdgeKey, local.EdgeKey); err != nil {
		return err
	}
	return e.Users.SetMeta(ctx, userID, models.MetaEdgeLastSync, time.Now().Format(time.RFC3339))
}
