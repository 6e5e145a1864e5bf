package book

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/models"
)

// CreateReview adds one review per user to a book and refreshes the derived
// rating fields.
func CreateReview(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	bookID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid book id"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "rating must be between 1 and 5", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var book models.Book
	if err := database.Books().FindOne(ctx, bson.M{"_id": bookID, "isActive": true}).Decode(&book); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "book not found"})
		return
	}
	if book.HasReviewBy(userID) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "you have already reviewed this book"})
		return
	}

	var user models.User
	userName := "Reader"
	if err := database.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err == nil && user.Name != "" {
		userName = user.Name
	}

	book.Reviews = append(book.Reviews, models.Review{
		UserID:    userID,
		UserName:  userName,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	})
	book.RecomputeRating()

	_, err = database.Books().UpdateOne(ctx, bson.M{"_id": bookID}, bson.M{
		"$push": bson.M{"reviews": book.Reviews[len(book.Reviews)-1]},
		"$set": bson.M{
			"rating":      book.Rating,
			"reviewCount": book.ReviewCount,
			"updatedAt":   time.Now(),
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save review"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{
		"rating":      book.Rating,
		"reviewCount": book.ReviewCount,
	}})
}
