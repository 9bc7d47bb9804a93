package edge

// WebSale is the outbound {n}-WebSale.json hand-off record for one order.
type WebSale struct {
	CustomerWebID   string      `json:"CustomerWebId"`
	WebSaleID       string      `json:"WebSaleId"`
	SaleEmail       string      `json:"SaleEmail"`
	SalePhone       string      `json:"SalePhone"`
	TotalWithTax    float64     `json:"TotalWithTax"`
	BillingAddress  SaleAddress `json:"BillingAddress"`
	ShippingAddress SaleAddress `json:"ShippingAddress"`
	ShippingAmt     float64     `json:"ShippingAmt"`
	SoldItems       []SoldItem  `json:"SoldItems"`
	Payments        []SalePayment `json:"Payments"`
}

type SaleAddress struct {
	Street1 string `json:"Street1"`
	Street2 string `json:"Street2"`
	City    string `json:"City"`
	State   string `json:"State"`
	Zip     string `json:"Zip"`
	Country string `json:"Country"`
}

type SoldItem struct {
	ItemSku   string  `json:"ItemSku"`
	SalePrice float64 `json:"SalePrice"`
}

type SalePayment struct {
	PaymentType    string  `json:"PaymentType"`
	PaymentAmount  float64 `json:"PaymentAmount"`
	PaymentSubType string  `json:"PaymentSubType"`
	Last4          string  `json:"Last4"`
	Expires        string  `json:"Expires"`
	FirstName      string  `json:"FirstName"`
	LastName       string  `json:"LastName"`
}
