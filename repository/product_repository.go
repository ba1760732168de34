package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/modavia/order-service/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository is the order service's view of the product catalog:
// line-item snapshots and stock movements.
type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ReserveStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	ReleaseStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

// MongoProductRepository implements ProductRepository on the products collection.
type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		collection: db.Collection("products"),
	}
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	filter := bson.M{"_id": id}
	var product models.Product
	err := r.collection.FindOne(ctx, filter).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

// ReserveStock decrements stock by quantity as a single conditional update.
// The filter requires stock >= quantity, so two concurrent reservations for
// the same product cannot both succeed past the last unit.
func (r *MongoProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	filter := bson.M{"_id": id, "stock": bson.M{"$gte": quantity}}
	update := bson.M{"$inc": bson.M{"stock": -quantity}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the product is gone or the condition failed.
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("reserve stock: %w", err)
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// ReleaseStock returns quantity units to stock. A missing product is not an
// error; cancellation keeps going for the remaining items.
func (r *MongoProductRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$inc": bson.M{"stock": quantity}}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	return nil
}
