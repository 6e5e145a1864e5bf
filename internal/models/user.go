package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNoIdentity = errors.New("user needs an email or a phone number")

// User account. Identity is email OR phone - at least one must be present.
// Password is optional: OTP-only and OAuth accounts never set one.
type User struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name,omitempty" json:"name,omitempty"`
	Email       string               `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Password    string               `bson:"password,omitempty" json:"-"`
	Role        string               `bson:"role" json:"role"`                   // user | admin
	Provider    string               `bson:"provider" json:"provider,omitempty"` // local | google | otp
	ProviderID  string               `bson:"providerId,omitempty" json:"-"`
	Addresses   []Address            `bson:"addresses,omitempty" json:"addresses,omitempty"`
	Wishlist    []primitive.ObjectID `bson:"wishlist,omitempty" json:"wishlist,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	LastLoginAt time.Time            `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}

// Address is embedded in the user document. Exactly one may be the default.
type Address struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Phone      string             `bson:"phone" json:"phone"`
	Street     string             `bson:"street" json:"street"`
	City       string             `bson:"city" json:"city"`
	State      string             `bson:"state" json:"state"`
	PostalCode string             `bson:"postalCode" json:"postalCode"`
	Country    string             `bson:"country" json:"country"`
	IsDefault  bool               `bson:"isDefault" json:"isDefault"`
}

// Validate enforces the identity invariant.
func (u *User) Validate() error {
	if u.Email == "" && u.Phone == "" {
		return ErrNoIdentity
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// SetDefaultAddress marks the given address as default and clears the flag on
// every other one. Returns false when the id is not in the list.
func (u *User) SetDefaultAddress(addressID primitive.ObjectID) bool {
	found := false
	for i := range u.Addresses {
		if u.Addresses[i].ID == addressID {
			u.Addresses[i].IsDefault = true
			found = true
		} else {
			u.Addresses[i].IsDefault = false
		}
	}
	return found
}

// InWishlist reports whether the book is already wishlisted.
func (u *User) InWishlist(bookID primitive.ObjectID) bool {
	for _, id := range u.Wishlist {
		if id == bookID {
			return true
		}
	}
	return false
}
