package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateRequiresIdentity(t *testing.T) {
	assert.ErrorIs(t, (&User{Name: "Ravi"}).Validate(), ErrNoIdentity)
	assert.NoError(t, (&User{Email: "ravi@example.com"}).Validate())
	assert.NoError(t, (&User{Phone: "9000000000"}).Validate())
}

func TestSetDefaultAddress(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	u := User{Addresses: []Address{
		{ID: a, IsDefault: true},
		{ID: b},
	}}

	assert.True(t, u.SetDefaultAddress(b))
	assert.False(t, u.Addresses[0].IsDefault)
	assert.True(t, u.Addresses[1].IsDefault)

	assert.False(t, u.SetDefaultAddress(primitive.NewObjectID()))
}

func TestInWishlist(t *testing.T) {
	book := primitive.NewObjectID()
	u := User{Wishlist: []primitive.ObjectID{book}}

	assert.True(t, u.InWishlist(book))
	assert.False(t, u.InWishlist(primitive.NewObjectID()))
}
