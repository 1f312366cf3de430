package models

import (
	"github.com/google/uuid"
)

// Order status values.
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// Payment methods.
const (
	PaymentMethodCOD    = "Cash On Delivery"
	PaymentMethodOnline = "Online"
)

// Payment status values.
const (
	PaymentStatusPending   = "Pending"
	PaymentStatusPaid      = "Paid"
	PaymentStatusFailed    = "Failed"
	PaymentStatusCancelled = "Cancelled"
	PaymentStatusRefunded  = "Refunded"
)

// ValidOrderStatuses enumerates the accepted order_status values.
var ValidOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ValidPaymentStatuses enumerates the accepted payment_status values.
var ValidPaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusCancelled,
	PaymentStatusRefunded,
}

// ShippingAddress is embedded into Order; all fields are required at
// checkout.
type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order is a placed order. OrderID is the opaque public token used by the
// payment gateway and tracking endpoints; it never changes after creation.
type Order struct {
	BaseModel
	OrderID         string          `gorm:"uniqueIndex" json:"order_id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	User            *User           `json:"user,omitempty"`
	PhoneNumber     string          `gorm:"index" json:"phone_number"`
	Products        []OrderItem     `gorm:"foreignKey:OrderRef;references:ID" json:"products,omitempty"`
	TotalPrice      float64         `json:"total_price"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	OrderStatus     string          `gorm:"default:Pending" json:"order_status"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `gorm:"default:Pending" json:"payment_status"`
	PaymentInfo     []byte          `gorm:"type:jsonb" json:"payment_info,omitempty"`
}

// OrderItem snapshots one cart line at purchase time; later product edits do
// not affect it.
type OrderItem struct {
	BaseModel
	OrderRef   uuid.UUID `gorm:"type:uuid;index;column:order_ref" json:"-"`
	ProductID  uuid.UUID `gorm:"type:uuid" json:"product"`
	Name       string    `json:"name"`
	Size       string    `json:"size"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	OfferPrice *float64  `json:"offer_price"`
}

// LineTotal is the effective unit price times quantity.
func (i *OrderItem) LineTotal() float64 {
	price := i.Price
	if i.OfferPrice != nil {
		price = *i.OfferPrice
	}
	return price * float64(i.Quantity)
}

// IsValidOrderStatus reports whether s is a recognized order status.
func IsValidOrderStatus(s string) bool {
	for _, v := range ValidOrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidPaymentStatus reports whether s is a recognized payment status.
func IsValidPaymentStatus(s string) bool {
	for _, v := range ValidPaymentStatuses {
		if v == s {
			return true
		}
	}
	return false
}
