package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role distinguishes customers from back-office users.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the authenticated caller of an order operation, as resolved
// by the auth middleware from the request token.
type Principal struct {
	ID   primitive.ObjectID
	Role Role
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
