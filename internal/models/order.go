package models

import "time"

type Order struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	CustomerID         uint      `json:"customer_id"`
	Status             string    `json:"status"`
	Total              float64   `json:"total" gorm:"type:decimal(10,2)"`
	ShippingTotal      float64   `json:"shipping_total" gorm:"type:decimal(10,2)"`
	BillingEmail       string    `json:"billing_email"`
	BillingPhone       string    `json:"billing_phone"`
	BillingFirstName   string    `json:"billing_first_name"`
	BillingLastName    string    `json:"billing_last_name"`
	BillingAddress1    string    `json:"billing_address1"`
	BillingAddress2    string    `json:"billing_address2"`
	BillingCity        string    `json:"billing_city"`
	BillingState       string    `json:"billing_state"`
	BillingPostcode    string    `json:"billing_postcode"`
	BillingCountry     string    `json:"billing_country"`
	ShippingAddress1   string    `json:"shipping_address1"`
	ShippingAddress2   string    `json:"shipping_address2"`
	ShippingCity       string    `json:"shipping_city"`
	ShippingState      string    `json:"shipping_state"`
	ShippingPostcode   string    `json:"shipping_postcode"`
	ShippingCountry    string    `json:"shipping_country"`
	PaymentMethod      string    `json:"payment_method"`
	PaymentMethodTitle string    `json:"payment_method_title"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	OrderID   uint    `json:"order_id"`
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total" gorm:"type:decimal(10,2)"`
}

type OrderMeta struct {
	OrderID   uint   `json:"order_id" gorm:"primaryKey"`
	MetaKey   string `json:"meta_key" gorm:"primaryKey"`
	MetaValue string `json:"meta_value"`
}

func (OrderMeta) TableName() string { return "order_meta" }
