package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// transitions is the directed graph of legal status changes.
// delivered and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// IsValid reports whether s is one of the five known statuses.
func (s OrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is permitted from s.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the transition s -> target is on the
// legal transition graph.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// PaymentMethod identifies how an order is paid for.
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentWallet         PaymentMethod = "wallet"
	PaymentStripe         PaymentMethod = "stripe"
)

// IsValid reports whether m is a supported payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCreditCard, PaymentBankTransfer, PaymentCashOnDelivery, PaymentWallet, PaymentStripe:
		return true
	}
	return false
}

// PaymentStatus is the gateway-reported state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// IsValid reports whether s is a known payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// OrderItem is an immutable snapshot of one product line captured at
// order-creation time. It is not live-linked to later product mutations.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"product" bson:"product"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
}

// ShippingAddress is the delivery destination embedded in an order.
type ShippingAddress struct {
	FullName   string `json:"fullName" bson:"fullName" binding:"required"`
	Address    string `json:"address" bson:"address" binding:"required"`
	City       string `json:"city" bson:"city" binding:"required"`
	PostalCode string `json:"postalCode" bson:"postalCode" binding:"required"`
	Country    string `json:"country" bson:"country" binding:"required"`
	Phone      string `json:"phone" bson:"phone" binding:"required"`
}

// Payment holds the payment state embedded in an order.
type Payment struct {
	Method        PaymentMethod `json:"method" bson:"method"`
	Status        PaymentStatus `json:"status" bson:"status"`
	TransactionID string        `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Order is the aggregate root. It exclusively owns its embedded items,
// shipping address and payment; products and users are referenced by id.
type Order struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user" bson:"user"`
	OrderItems      []OrderItem        `json:"orderItems" bson:"orderItems"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" bson:"shippingAddress"`
	Payment         Payment            `json:"payment" bson:"payment"`
	ItemsPrice      float64            `json:"itemsPrice" bson:"itemsPrice"`
	TaxPrice        float64            `json:"taxPrice" bson:"taxPrice"`
	ShippingPrice   float64            `json:"shippingPrice" bson:"shippingPrice"`
	TotalPrice      float64            `json:"totalPrice" bson:"totalPrice"`
	Status          OrderStatus        `json:"status" bson:"status"`
	TrackingNumber  string             `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	Notes           string             `json:"notes,omitempty" bson:"notes,omitempty"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	IsPaid          bool               `json:"isPaid" bson:"isPaid"`
	PaidAt          *time.Time         `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	IsDelivered     bool               `json:"isDelivered" bson:"isDelivered"`
	DeliveredAt     *time.Time         `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}
