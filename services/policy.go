package services

import "github.com/modavia/order-service/models"

// AccessPolicy decides which principal may read or mutate which order.
// Admins may do anything; customers may only touch their own orders.
type AccessPolicy struct{}

// CanRead reports whether p may view the order.
func (AccessPolicy) CanRead(order *models.Order, p models.Principal) bool {
	return p.IsAdmin() || p.ID == order.UserID
}

// CanCancel reports whether p may cancel the order.
func (AccessPolicy) CanCancel(order *models.Order, p models.Principal) bool {
	return p.IsAdmin() || p.ID == order.UserID
}

// CanAdminUpdate reports whether p may set an arbitrary order status.
func (AccessPolicy) CanAdminUpdate(p models.Principal) bool {
	return p.IsAdmin()
}
