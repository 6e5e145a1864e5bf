package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pustakalu_backend/internal/models"
)

// MongoOrders implements service.OrderStore on the orders collection.
type MongoOrders struct {
	coll *mongo.Collection
}

func NewMongoOrders(coll *mongo.Collection) *MongoOrders {
	return &MongoOrders{coll: coll}
}

func (s *MongoOrders) Insert(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	_, err := s.coll.InsertOne(ctx, order)
	return err
}

func (s *MongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoOrders) Update(ctx context.Context, order *models.Order) error {
	order.UpdatedAt = time.Now()
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	return err
}
