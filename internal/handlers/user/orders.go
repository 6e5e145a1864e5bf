package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/handlers/respond"
	"pustakalu_backend/internal/models"
	"pustakalu_backend/internal/service"
)

var svc *service.Orders

// Setup injects the order service used by the order-history handlers.
func Setup(s *service.Orders) {
	svc = s
}

// GetMyOrders lists the caller's orders, newest first.
func GetMyOrders(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	ctx := c.Request.Context()
	cursor, err := database.Orders().Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load orders"})
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

// GetOrder returns one order with its full timeline. Owners only, except
// admins who may read any order.
func GetOrder(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	order, err := svc.GetOrder(c.Request.Context(), userID, c.GetString("role") == "admin", c.Param("orderId"))
	if err != nil {
		respond.ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// CancelOrder cancels a not-yet-shipped order, restoring stock when payment
// had already settled it.
func CancelOrder(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	order, err := svc.CancelOrder(c.Request.Context(), userID, c.Param("orderId"))
	if err != nil {
		respond.ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "order cancelled", "data": order})
}
