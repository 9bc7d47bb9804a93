package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"edgesync/internal/edge"
	"edgesync/internal/events"
	"edgesync/internal/logger"
	"edgesync/internal/models"
	"edgesync/internal/transport"
)

type OrderStore interface {
	Get(ctx context.Context, id uint) (*models.Order, error)
	Items(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	MetaMap(ctx context.Context, orderID uint) (map[string]string, error)
	SetMeta(ctx context.Context, orderID uint, key, value string) error
}

// OrderManager pushes completed orders to EDGE one at a time. An order is
// a degenerate batch: no chunking, no job record, at most one customer
// file and one sale file per call.
type OrderManager struct {
	Logger       *logger.Logger
	Dial         transport.Dialer
	Transport    transport.Config
	RemoteFolder string

	Orders      OrderStore
	Users       UserStore
	Products    ProductStore
	State       StateStore
	Transformer *edge.Transformer
	Exporter    *Exporter
	Events      Publisher
}

// SyncOrder uploads an order as a {n}-WebSale.json file. If the customer
// was never exported, a customer file goes up first so EDGE can resolve
// the sale. The sync meta on the order is stamped only after a successful
// upload, which is what makes re-delivered order events harmless.
func (m *OrderManager) SyncOrder(ctx context.Context, orderID uint) error {
	order, err := m.Orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order %d not found", orderID)
	}

	meta, err := m.Orders.MetaMap(ctx, orderID)
	if err != nil {
		return err
	}
	if meta[models.MetaEdgeSync] != "" {
		m.Logger.Debug("Order %d already synced, nothing to do", orderID)
		return nil
	}

	if order.CustomerID == 0 {
		return fmt.Errorf("order %d has no customer account, cannot hand off", orderID)
	}
	customer, err := m.Users.Get(ctx, order.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return fmt.Errorf("customer %d of order %d not found", order.CustomerID, orderID)
	}

	tr, err := m.Dial(m.Transport)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer tr.Close()
	outbox := transport.OutboxPath(m.RemoteFolder)

	synced, err := m.Users.GetMeta(ctx, customer.ID, models.MetaEdgeSync)
	if err != nil {
		return err
	}
	if synced == "" {
		// The sale still goes up if the customer export fails; EDGE will
		// park it for manual resolution.
		if err := m.Exporter.ExportCustomer(ctx, tr, outbox, customer); err != nil {
			m.Logger.Error("Customer export ahead of order %d failed: %v", orderID, err)
		}
	}

	local, err := m.localOrder(ctx, order, meta)
	if err != nil {
		return err
	}
	sale := m.Transformer.BuildWebSale(local)
	payload, err := json.MarshalIndent(sale, "", "  ")
	if err != nil {
		return err
	}

	seq, err := m.State.OutboundSeq(ctx)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%d-WebSale.json", seq)
	if err := tr.Write(outbox+"/"+name, payload); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err := m.State.BumpOutboundSeq(ctx); err != nil {
		return err
	}

	if err := m.Orders.SetMeta(ctx, orderID, models.MetaEdgeSync, "1"); err != nil {
		return fmt.Errorf("uploaded %s but failed to mark order %d: %w", name, orderID, err)
	}
	if err := m.Orders.SetMeta(ctx, orderID, models.MetaEdgeLastSync, time.Now().Format(time.RFC3339)); err != nil {
		m.Logger.Error("Failed to stamp sync time on order %d: %v", orderID, err)
	}

	m.Events.Publish(ctx, events.TypeOrderSynced, strconv.FormatUint(uint64(orderID), 10),
		map[string]interface{}{"file": name, "customer_id": order.CustomerID})
	m.Logger.Info("Order %d handed off as %s", orderID, name)
	return nil
}

// localOrder flattens an order row, its lines, and its meta into the
// transformer's input. Lines whose product has no EDGE linkage are
// dropped; EDGE cannot receive an unknown SKU.
func (m *OrderManager) localOrder(ctx context.Context, order *models.Order, meta map[string]string) (edge.LocalOrder, error) {
	rows, err := m.Orders.Items(ctx, order.ID)
	if err != nil {
		return edge.LocalOrder{}, err
	}

	var items []edge.LocalOrderItem
	for _, row := range rows {
		sku, err := m.Products.EdgeID(ctx, row.ProductID)
		if err != nil {
			return edge.LocalOrder{}, err
		}
		if sku == "" {
			m.Logger.Debug("Order %d line for product %d has no EDGE linkage, dropped", order.ID, row.ProductID)
			continue
		}
		items = append(items, edge.LocalOrderItem{
			ItemSku:  sku,
			Quantity: row.Quantity,
			Total:    row.Total,
		})
	}

	return edge.LocalOrder{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		Email:            order.BillingEmail,
		Phone:            order.BillingPhone,
		Total:            order.Total,
		ShippingTotal:    order.ShippingTotal,
		BillingFirstName: order.BillingFirstName,
		BillingLastName:  order.BillingLastName,
		Billing: edge.SaleAddress{
			Street1: order.BillingAddress1,
			Street2: order.BillingAddress2,
			City:    order.BillingCity,
			State:   order.BillingState,
			Zip:     order.BillingPostcode,
			Country: order.BillingCountry,
		},
		Shipping: edge.SaleAddress{
			Street1: order.ShippingAddress1,
			Street2: order.ShippingAddress2,
			City:    order.ShippingCity,
			State:   order.ShippingState,
			Zip:     order.ShippingPostcode,
			Country: order.ShippingCountry,
		},
		PaymentMethodTitle: order.PaymentMethodTitle,
		Meta:               meta,
		Items:              items,
	}, nil
}
