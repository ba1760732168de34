package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the catalog record an order line item snapshots from.
// Only the fields the order flow reads are mapped here; the catalog
// service owns the full document.
type Product struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Stock     int                `json:"stock" bson:"stock"`
	Images    []string           `json:"images" bson:"images"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// FirstImage returns the snapshot image for an order line, or "" when the
// product has none.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
