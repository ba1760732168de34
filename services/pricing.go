package services

import (
	apperrors "github.com/modavia/order-service/common/errors"
	"github.com/modavia/order-service/models"
)

const (
	// TaxRate is the VAT applied to the items subtotal.
	TaxRate = 0.18
	// FreeShippingThreshold is the items subtotal above which shipping is free.
	FreeShippingThreshold = 500.0
	// ShippingFee is the flat fee charged below the threshold.
	ShippingFee = 30.0
)

// OrderTotals holds the derived monetary fields of an order. They are always
// computed server-side, never taken from the client.
type OrderTotals struct {
	ItemsPrice    float64
	TaxPrice      float64
	ShippingPrice float64
	TotalPrice    float64
}

// CalculateTotals derives the order totals from its line items.
// Pure: no side effects, no storage access.
func CalculateTotals(items []models.OrderItem) (OrderTotals, *apperrors.Error) {
	if len(items) == 0 {
		return OrderTotals{}, apperrors.InvalidInput("No order items found", nil)
	}

	var totals OrderTotals
	for _, item := range items {
		totals.ItemsPrice += item.Price * float64(item.Quantity)
	}

	totals.TaxPrice = totals.ItemsPrice * TaxRate

	if totals.ItemsPrice > FreeShippingThreshold {
		totals.ShippingPrice = 0
	} else {
		totals.ShippingPrice = ShippingFee
	}

	totals.TotalPrice = totals.ItemsPrice + totals.TaxPrice + totals.ShippingPrice
	return totals, nil
}

// Apply writes the computed totals onto the order.
func (t OrderTotals) Apply(order *models.Order) {
	order.ItemsPrice = t.ItemsPrice
	order.TaxPrice = t.TaxPrice
	order.ShippingPrice = t.ShippingPrice
	order.TotalPrice = t.TotalPrice
}
