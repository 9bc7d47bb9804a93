package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWebSaleExpandsQuantity(t *testing.T) {
	tr := NewTransformer(7)

	sale := tr.BuildWebSale(LocalOrder{
		ID:         42,
		CustomerID: 9,
		Total:      35.00,
		Items: []LocalOrderItem{
			{ItemSku: "SKU-1", Quantity: 3, Total: 30.00},
			{ItemSku: "SKU-2", Quantity: 1, Total: 5.00},
			{ItemSku: "", Quantity: 2, Total: 4.00},   // no EDGE linkage
			{ItemSku: "SKU-3", Quantity: 0, Total: 0}, // bad quantity
		},
	})

	require.Len(t, sale.SoldItems, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, "SKU-1", sale.SoldItems[i].ItemSku)
		assert.Equal(t, 10.00, sale.SoldItems[i].SalePrice)
	}
	assert.Equal(t, "SKU-2", sale.SoldItems[3].ItemSku)
	assert.Equal(t, 5.00, sale.SoldItems[3].SalePrice)

	assert.Equal(t, "web-42", sale.WebSaleID)
	assert.Equal(t, "9", sale.CustomerWebID)
}

func TestBuildWebSaleCardMeta(t *testing.T) {
	tr := NewTransformer(7)

	t.Run("placeholders when nothing recorded", func(t *testing.T) {
		sale := tr.BuildWebSale(LocalOrder{ID: 1, Meta: map[string]string{}})
		require.Len(t, sale.Payments, 1)
		assert.Equal(t, "1234", sale.Payments[0].Last4)
		assert.Equal(t, "1299", sale.Payments[0].Expires)
		assert.Equal(t, "Visa", sale.Payments[0].PaymentSubType)
	})

	t.Run("gateway meta wins by priority", func(t *testing.T) {
		sale := tr.BuildWebSale(LocalOrder{
			ID:                 1,
			PaymentMethodTitle: "Stripe",
			Meta: map[string]string{
				"_stripe_card_last4":  "4242",
				"_card_last4":         "9999",
				"_stripe_card_expiry": "03/2027",
			},
		})
		assert.Equal(t, "4242", sale.Payments[0].Last4)
		assert.Equal(t, "0327", sale.Payments[0].Expires)
		assert.Equal(t, "Stripe", sale.Payments[0].PaymentSubType)
	})
}

func TestBuildWebSaleShippingFallsBackToBilling(t *testing.T) {
	tr := NewTransformer(7)

	billing := SaleAddress{Street1: "1 Main St", City: "Springfield", State: "IL", Zip: "62701", Country: "US"}
	sale := tr.BuildWebSale(LocalOrder{
		ID:       1,
		Billing:  billing,
		Shipping: SaleAddress{City: "Shelbyville"},
	})

	assert.Equal(t, "Shelbyville", sale.ShippingAddress.City)
	assert.Equal(t, "1 Main St", sale.ShippingAddress.Street1)
	assert.Equal(t, "62701", sale.ShippingAddress.Zip)
	assert.Equal(t, billing, sale.BillingAddress)
}

func TestNormalizeExpiry(t *testing.T) {
	cases := map[string]string{
		"03/2027": "0327",
		"122026":  "1226",
		"0327":    "0327",
		"3/27":    "327",
		"":        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeExpiry(in), in)
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "15551234567", DigitsOnly("+1 (555) 123-4567"))
	assert.Equal(t, "", DigitsOnly("no digits"))
}

func TestBuildCustomerSections(t *testing.T) {
	tr := NewTransformer(7)

	t.Run("full record", func(t *testing.T) {
		c := tr.BuildCustomer(LocalCustomer{
			ID:              12,
			FirstName:       "Alice",
			LastName:        "Smith",
			Email:           "alice@example.com",
			BillingPhone:    "555-123-4567",
			BillingAddress1: "1 Main St",
			BillingCity:     "Springfield",
			EdgeKey:         "WEB-CUSTOMER-12",
		})

		require.Len(t, c.PairValue.Addresses, 1)
		assert.Equal(t, "USA", c.PairValue.Addresses[0].PairValue.AddressCountry)
		require.Len(t, c.PairValue.Emails, 1)
		assert.True(t, c.PairValue.Emails[0].PairValue.EmailSendPromo)
		require.Len(t, c.PairValue.Phones, 1)
		assert.Equal(t, "5551234567", c.PairValue.Phones[0].PairValue.PhonePhone)

		assert.Equal(t, "WEB-CUSTOMER-12", c.Key)
		assert.Equal(t, uint(12), c.PairValue.CustomerTransfer.WebTransferWebID)
		assert.Equal(t, 7, c.PairValue.CustomerTransfer.WebTransferVendorID)
	})

	t.Run("bare record emits empty sections", func(t *testing.T) {
		c := tr.BuildCustomer(LocalCustomer{ID: 3, Email: "x@example.com", EdgeKey: "K"})
		assert.Empty(t, c.PairValue.Addresses)
		assert.Empty(t, c.PairValue.Phones)
		assert.Len(t, c.PairValue.Emails, 1)
		assert.Nil(t, c.PairValue.CustomerID)
	})
}

func TestBuildCustomerListCounts(t *testing.T) {
	tr := NewTransformer(7)
	list := tr.BuildCustomerList(LocalCustomer{
		ID:              1,
		Email:           "a@example.com",
		BillingAddress1: "1 Main St",
		EdgeKey:         "K",
	})
	assert.Len(t, list.Customers, 1)
	assert.Equal(t, 1, list.MaxAddresses)
	assert.Equal(t, 1, list.MaxEmails)
	assert.Equal(t, 0, list.MaxPhones)
}
