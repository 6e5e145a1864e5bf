package user

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/models"
)

// Address book CRUD. Addresses are embedded in the user document, so every
// write rewrites the addresses array whole.

type addressRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required,len=6"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

func (r addressRequest) toModel(id primitive.ObjectID) models.Address {
	country := r.Country
	if country == "" {
		country = "India"
	}
	return models.Address{
		ID:         id,
		Name:       r.Name,
		Phone:      r.Phone,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    country,
		IsDefault:  r.IsDefault,
	}
}

// ListAddresses returns the caller's address book.
func ListAddresses(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user.Addresses})
}

// AddAddress appends an address. The first address becomes the default; a new
// default clears the flag everywhere else.
func AddAddress(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid address", "details": err.Error()})
		return
	}

	addr := req.toModel(primitive.NewObjectID())
	if len(user.Addresses) == 0 {
		addr.IsDefault = true
	}
	user.Addresses = append(user.Addresses, addr)
	if addr.IsDefault {
		user.SetDefaultAddress(addr.ID)
	}

	if err := saveAddresses(c, user); err != nil {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": addr})
}

// UpdateAddress replaces one address in place.
func UpdateAddress(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	addrID, err := primitive.ObjectIDFromHex(c.Param("addressId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid address id"})
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid address", "details": err.Error()})
		return
	}

	found := false
	for i := range user.Addresses {
		if user.Addresses[i].ID == addrID {
			user.Addresses[i] = req.toModel(addrID)
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "address not found"})
		return
	}
	if req.IsDefault {
		user.SetDefaultAddress(addrID)
	}

	if err := saveAddresses(c, user); err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "address updated"})
}

// DeleteAddress removes one address. If it was the default, the first
// remaining address inherits the flag.
func DeleteAddress(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	addrID, err := primitive.ObjectIDFromHex(c.Param("addressId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid address id"})
		return
	}

	wasDefault := false
	kept := make([]models.Address, 0, len(user.Addresses))
	for _, a := range user.Addresses {
		if a.ID == addrID {
			wasDefault = a.IsDefault
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == len(user.Addresses) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "address not found"})
		return
	}
	user.Addresses = kept
	if wasDefault && len(user.Addresses) > 0 {
		user.Addresses[0].IsDefault = true
	}

	if err := saveAddresses(c, user); err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "address removed"})
}

// SetDefaultAddress marks one address as default and clears the others.
func SetDefaultAddress(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	addrID, err := primitive.ObjectIDFromHex(c.Param("addressId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid address id"})
		return
	}
	if !user.SetDefaultAddress(addrID) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "address not found"})
		return
	}

	if err := saveAddresses(c, user); err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "default address updated"})
}

func saveAddresses(c *gin.Context, user *models.User) error {
	_, err := database.Users().UpdateOne(c.Request.Context(), bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"addresses": user.Addresses, "updatedAt": time.Now()},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save addresses"})
	}
	return err
}
