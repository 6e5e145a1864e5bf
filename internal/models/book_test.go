package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplyStockDeltaKeepsFlagConsistent(t *testing.T) {
	b := Book{StockCount: 3, InStock: true}

	b.ApplyStockDelta(-3)
	assert.Equal(t, 0, b.StockCount)
	assert.False(t, b.InStock)

	b.ApplyStockDelta(5)
	assert.Equal(t, 5, b.StockCount)
	assert.True(t, b.InStock)

	// over-decrement clamps at zero instead of going negative
	b.ApplyStockDelta(-10)
	assert.Equal(t, 0, b.StockCount)
	assert.False(t, b.InStock)
}

func TestRecomputeRating(t *testing.T) {
	b := Book{Reviews: []Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}}
	b.RecomputeRating()

	assert.Equal(t, 3, b.ReviewCount)
	assert.Equal(t, 4.3, b.Rating) // 13/3 = 4.333... rounds to one decimal

	b.Reviews = nil
	b.RecomputeRating()
	assert.Equal(t, 0, b.ReviewCount)
	assert.Equal(t, 0.0, b.Rating)
}

func TestHasReviewBy(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	b := Book{Reviews: []Review{{UserID: alice, Rating: 5}}}

	assert.True(t, b.HasReviewBy(alice))
	assert.False(t, b.HasReviewBy(bob))
}
