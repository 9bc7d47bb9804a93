package edge

import (
	"math"
	"strconv"
	"strings"
)

// Transformer maps between local storefront records and the EDGE JSON
// schema. All methods are pure; persistence stays with the caller.
type Transformer struct {
	VendorID int
}

func NewTransformer(vendorID int) *Transformer {
	return &Transformer{VendorID: vendorID}
}

// LocalCustomer is the slice of a storefront account the export schema
// can represent.
type LocalCustomer struct {
	ID        uint
	FirstName string
	LastName  string
	Email     string

	BillingPhone    string
	BillingCompany  string
	BillingAddress1 string
	BillingAddress2 string
	BillingCity     string
	BillingState    string
	BillingPostcode string
	BillingCountry  string

	EdgeKey string
	EdgeID  string
}

// BuildCustomer wraps one local account into the full nested schema EDGE
// expects. Addresses/Emails/Phones are populated only when the local
// fields are non-empty; everything the storefront has no equivalent for
// is emitted as empty string or null.
func (t *Transformer) BuildCustomer(c LocalCustomer) Customer {
	var addresses []Address
	if c.BillingAddress1 != "" || c.BillingCity != "" {
		addresses = append(addresses, Address{
			Key: "Home",
			PairValue: AddressDetail{
				AddressCustKey: c.EdgeKey,
				AddressType:    "Home",
				AddressCompany: c.BillingCompany,
				AddressStreet:  c.BillingAddress1,
				AddressStreet2: c.BillingAddress2,
				AddressCity:    c.BillingCity,
				AddressState:   c.BillingState,
				AddressZip:     c.BillingPostcode,
				AddressCountry: defaultString(c.BillingCountry, "USA"),
			},
		})
	}

	var emails []Email
	if c.Email != "" {
		emails = append(emails, Email{
			Key: "Work",
			PairValue: EmailDetail{
				EmailCustKey:   c.EdgeKey,
				EmailType:      "Work",
				EmailEmail:     c.Email,
				EmailSendPromo: true,
			},
		})
	}

	var phones []Phone
	if c.BillingPhone != "" {
		phones = append(phones, Phone{
			Key: "Cell",
			PairValue: PhoneDetail{
				PhoneCustKey: c.EdgeKey,
				PhoneType:    "Cell",
				PhonePhone:   DigitsOnly(c.BillingPhone),
			},
		})
	}

	var edgeID interface{}
	if c.EdgeID != "" {
		edgeID = c.EdgeID
	}

	return Customer{
		Key: c.EdgeKey,
		PairValue: CustomerDetail{
			CustomerStoreID:   1,
			CustomerID:        edgeID,
			CustomerKey:       c.EdgeKey,
			CustomerFirstName: c.FirstName,
			CustomerLastName:  c.LastName,
			CustomerPrefMail:  "Home",
			CustomerPrefPhone: "Cell",
			CustomerPrefEMail: "Work",
			CustomerCompany:   c.BillingCompany,
			Addresses:         addresses,
			Emails:            emails,
			Phones:            phones,
			CustomerTransfer: Transfer{
				WebTransferEdgeID:   c.EdgeID,
				WebTransferWebID:    c.ID,
				WebTransferVendorID: t.VendorID,
			},
		},
	}
}

// BuildCustomerList wraps a single customer for the {n}_NEW-CustomerList
// upload. The Max* hints are 1-per-populated-section by construction.
func (t *Transformer) BuildCustomerList(c LocalCustomer) CustomerList {
	cust := t.BuildCustomer(c)
	return CustomerList{
		Customers:    []Customer{cust},
		MaxAddresses: len(cust.PairValue.Addresses),
		MaxEmails:    len(cust.PairValue.Emails),
		MaxPhones:    len(cust.PairValue.Phones),
	}
}

// LocalOrderItem carries one order line already resolved to its EDGE SKU.
// Lines whose product has no EDGE linkage are omitted by the caller.
type LocalOrderItem struct {
	ItemSku  string
	Quantity int
	Total    float64
}

type LocalOrder struct {
	ID         uint
	CustomerID uint

	Email string
	Phone string

	Total         float64
	ShippingTotal float64

	BillingFirstName string
	BillingLastName  string
	Billing          SaleAddress
	Shipping         SaleAddress

	PaymentMethodTitle string
	Meta               map[string]string

	Items []LocalOrderItem
}

// Meta keys checked, in priority order, for card details left behind by
// payment gateways. The storefront has no authoritative card data; when
// nothing matches, placeholder values are emitted for the POS hand-off.
var (
	last4MetaKeys  = []string{"_stripe_card_last4", "_paypal_card_last4", "_square_card_last4", "_card_last4"}
	expiryMetaKeys = []string{"_stripe_card_expiry", "_paypal_card_expiry", "_square_card_expiry", "_card_expiry"}
)

const (
	placeholderLast4  = "1234"
	placeholderExpiry = "1299"
)

// BuildWebSale flattens an order into the EDGE WebSale schema. Each unit
// of quantity becomes its own SoldItems entry at the per-unit price; the
// external schema requires the duplication.
func (t *Transformer) BuildWebSale(o LocalOrder) WebSale {
	var sold []SoldItem
	for _, item := range o.Items {
		if item.ItemSku == "" || item.Quantity <= 0 {
			continue
		}
		unitPrice := round2(item.Total / float64(item.Quantity))
		for i := 0; i < item.Quantity; i++ {
			sold = append(sold, SoldItem{
				ItemSku:   item.ItemSku,
				SalePrice: unitPrice,
			})
		}
	}

	last4 := placeholderLast4
	for _, key := range last4MetaKeys {
		if v := o.Meta[key]; v != "" {
			last4 = v
			break
		}
	}
	expires := placeholderExpiry
	for _, key := range expiryMetaKeys {
		if v := o.Meta[key]; v != "" {
			expires = NormalizeExpiry(v)
			break
		}
	}

	customerWebID := ""
	if o.CustomerID != 0 {
		customerWebID = strconv.FormatUint(uint64(o.CustomerID), 10)
	}

	return WebSale{
		CustomerWebID:   customerWebID,
		WebSaleID:       "web-" + strconv.FormatUint(uint64(o.ID), 10),
		SaleEmail:       o.Email,
		SalePhone:       DigitsOnly(o.Phone),
		TotalWithTax:    round2(o.Total),
		BillingAddress:  o.Billing,
		ShippingAddress: fallbackAddress(o.Shipping, o.Billing),
		ShippingAmt:     round2(o.ShippingTotal),
		SoldItems:       sold,
		Payments: []SalePayment{
			{
				PaymentType:    "CC",
				PaymentAmount:  round2(o.Total),
				PaymentSubType: defaultString(o.PaymentMethodTitle, "Visa"),
				Last4:          last4,
				Expires:        expires,
				FirstName:      o.BillingFirstName,
				LastName:       o.BillingLastName,
			},
		},
	}
}

// NormalizeExpiry reduces an expiry string to MMYY. MMYYYY collapses to
// MMYY; anything else is returned digits-only as-is.
func NormalizeExpiry(s string) string {
	digits := DigitsOnly(s)
	if len(digits) == 6 {
		return digits[0:2] + digits[4:6]
	}
	return digits
}

// DigitsOnly strips every non-numeric character, e.g. from phone numbers.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fallbackAddress(primary, fallback SaleAddress) SaleAddress {
	out := primary
	if out.Street1 == "" {
		out.Street1 = fallback.Street1
	}
	if out.Street2 == "" {
		out.Street2 = fallback.Street2
	}
	if out.City == "" {
		out.City = fallback.City
	}
	if out.State == "" {
		out.State = fallback.State
	}
	if out.Zip == "" {
		out.Zip = fallback.Zip
	}
	if out.Country == "" {
		out.Country = fallback.Country
	}
	return out
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
