package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/handlers/respond"
	"pustakalu_backend/internal/models"
	"pustakalu_backend/internal/service"
)

var svc *service.Orders

// Setup injects the order service for the admin transitions.
func Setup(s *service.Orders) {
	svc = s
}

// ListOrders returns every order, newest first, optionally filtered by status.
func ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["orderStatus"] = status
	}

	ctx := c.Request.Context()
	total, err := database.Orders().CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load orders"})
		return
	}

	cursor, err := database.Orders().Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page-1)*limit)).
		SetLimit(int64(limit)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load orders"})
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to decode orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders": orders,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
				"pages": (total + int64(limit) - 1) / int64(limit),
			},
		},
	})
}

// UpdateOrderStatus moves an order along its lifecycle. Exactly one timeline
// entry is appended per call; shippedAt/deliveredAt stamp only the first time.
//
// PUT /api/orders/:orderId/status
func UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status         string `json:"status" binding:"required"`
		TrackingNumber string `json:"trackingNumber"`
		Note           string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "status is required"})
		return
	}

	order, err := svc.UpdateStatus(c.Request.Context(), c.Param("orderId"), req.Status, req.TrackingNumber, req.Note)
	if err != nil {
		respond.ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}
