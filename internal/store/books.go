package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pustakalu_backend/internal/models"
	"pustakalu_backend/internal/service"
)

// MongoBooks implements service.BookStore on the books collection.
type MongoBooks struct {
	coll *mongo.Collection
}

func NewMongoBooks(coll *mongo.Collection) *MongoBooks {
	return &MongoBooks{coll: coll}
}

func (s *MongoBooks) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// AdjustStock applies the stock/sales deltas in one conditional update. A
// decrement carries a stockCount guard in the filter, so two concurrent
// settlements can never drive the count negative. The inStock flag is
// recomputed from the post-update count.
func (s *MongoBooks) AdjustStock(ctx context.Context, id primitive.ObjectID, stockDelta, salesDelta int) error {
	filter := bson.M{"_id": id}
	if stockDelta < 0 {
		filter["stockCount"] = bson.M{"$gte": -stockDelta}
	}

	update := bson.M{
		"$inc":         bson.M{"stockCount": stockDelta, "salesCount": salesDelta},
		"$currentDate": bson.M{"updatedAt": true},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var book models.Book
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// distinguish a missing book from a failed stock guard
		n, countErr := s.coll.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && n == 0 {
			return fmt.Errorf("%w: book %s", service.ErrNotFound, id.Hex())
		}
		return fmt.Errorf("%w: book %s", service.ErrInsufficientStock, id.Hex())
	}
	if err != nil {
		return err
	}

	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"inStock": book.StockCount > 0}})
	return err
}
