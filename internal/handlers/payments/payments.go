package payments

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/handlers/respond"
	"pustakalu_backend/internal/models"
	"pustakalu_backend/internal/service"
	"pustakalu_backend/internal/utils"
)

var svc *service.Orders

// Setup injects the order service. Called once from main before the routes go
// live.
func Setup(s *service.Orders) {
	svc = s
}

// CreateOrder validates the cart, opens a gateway order for the authoritative
// amount and persists the pending local order.
//
// POST /api/payments/create-order
func CreateOrder(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	var in service.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "amount, items and shippingAddress are required", "details": err.Error()})
		return
	}

	order, gwOrder, err := svc.PlaceOrder(c.Request.Context(), userID, in)
	if err != nil {
		respond.ServiceError(c, err)
		return
	}

	log.Printf("✅ order %s placed for %s (₹%.2f)", order.OrderNumber, userID.Hex(), order.OrderSummary.Total)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"order": gin.H{
				"id":          order.ID.Hex(),
				"orderNumber": order.OrderNumber,
				"total":       order.OrderSummary.Total,
			},
			"gatewayOrder": gwOrder,
		},
	})
}

// Verify checks the gateway's payment signature and settles the order. Safe to
// retry: an already-paid order returns its current state untouched.
//
// POST /api/payments/verify
func Verify(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	var in service.VerifyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "gatewayOrderId, gatewayPaymentId, gatewaySignature and orderId are required"})
		return
	}

	order, err := svc.ConfirmPayment(c.Request.Context(), userID, in)
	if err != nil {
		respond.ServiceError(c, err)
		return
	}

	log.Printf("✅ payment verified for order %s", order.OrderNumber)
	go sendConfirmationEmail(userID, order)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "payment verified", "data": order})
}

// RecordFailure stores the reason the client saw the payment fail, so support
// and the order timeline have it.
//
// POST /api/payments/failure
func RecordFailure(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	var req struct {
		OrderID string `json:"orderId" binding:"required"`
		Error   string `json:"error"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "orderId is required"})
		return
	}
	if req.Error == "" {
		req.Error = "payment failed on client"
	}

	order, err := svc.RecordPaymentFailure(c.Request.Context(), userID, req.OrderID, req.Error)
	if err != nil {
		respond.ServiceError(c, err)
		return
	}

	log.Printf("⚠️ payment failure recorded for order %s: %s", order.OrderNumber, req.Error)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "failure recorded", "data": order})
}

// sendConfirmationEmail is best effort and runs off the request path.
func sendConfirmationEmail(userID primitive.ObjectID, order *models.Order) {
	var u models.User
	err := database.Users().FindOne(context.Background(), bson.M{"_id": userID}).Decode(&u)
	if err != nil || u.Email == "" {
		return
	}
	utils.SendOrderConfirmation(order, u.Email)
}
