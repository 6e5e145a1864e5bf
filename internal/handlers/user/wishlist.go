package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/models"
)

// GetWishlist returns the wishlisted books, resolved against the live catalog.
// Deactivated books silently drop out.
func GetWishlist(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	if len(user.Wishlist) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []models.Book{}})
		return
	}

	ctx := c.Request.Context()
	cursor, err := database.Books().Find(ctx,
		bson.M{"_id": bson.M{"$in": user.Wishlist}, "isActive": true},
		options.Find().SetProjection(bson.M{"reviews": 0}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load wishlist"})
		return
	}
	defer cursor.Close(ctx)

	books := []models.Book{}
	if err := cursor.All(ctx, &books); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": books})
}

// AddToWishlist adds a book id. Duplicates are a no-op thanks to $addToSet.
func AddToWishlist(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}
	bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid book id"})
		return
	}

	ctx := c.Request.Context()
	count, err := database.Books().CountDocuments(ctx, bson.M{"_id": bookID, "isActive": true})
	if err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "book not found"})
		return
	}

	_, err = database.Users().UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"wishlist": bookID}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "added to wishlist"})
}

// RemoveFromWishlist drops a book id from the list.
func RemoveFromWishlist(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}
	bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid book id"})
		return
	}

	_, err = database.Users().UpdateOne(c.Request.Context(), bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"wishlist": bookID}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "removed from wishlist"})
}
