package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/models"
)

// Dashboard aggregates the numbers the admin console's landing page shows:
// order counts by status, revenue from paid orders, stock alerts and the user
// count.
func Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	// orders grouped by status
	statusCursor, err := database.Orders().Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": "$orderStatus", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load dashboard"})
		return
	}
	defer statusCursor.Close(ctx)

	ordersByStatus := gin.H{}
	var totalOrders int64
	for statusCursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := statusCursor.Decode(&row); err != nil {
			continue
		}
		ordersByStatus[row.Status] = row.Count
		totalOrders += row.Count
	}

	// revenue from settled payments only
	revenueCursor, err := database.Orders().Aggregate(ctx, bson.A{
		bson.M{"$match": bson.M{"paymentDetails.status": models.PaymentPaid}},
		bson.M{"$group": bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$orderSummary.total"},
			"count":   bson.M{"$sum": 1},
		}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load dashboard"})
		return
	}
	defer revenueCursor.Close(ctx)

	var revenue struct {
		Revenue float64 `bson:"revenue"`
		Count   int64   `bson:"count"`
	}
	if revenueCursor.Next(ctx) {
		revenueCursor.Decode(&revenue)
	}

	// paid revenue over the last 30 days, for the trend tile
	since := time.Now().AddDate(0, 0, -30)
	recentCursor, err := database.Orders().Aggregate(ctx, bson.A{
		bson.M{"$match": bson.M{
			"paymentDetails.status": models.PaymentPaid,
			"createdAt":             bson.M{"$gte": since},
		}},
		bson.M{"$group": bson.M{"_id": nil, "revenue": bson.M{"$sum": "$orderSummary.total"}}},
	})
	var recentRevenue struct {
		Revenue float64 `bson:"revenue"`
	}
	if err == nil {
		if recentCursor.Next(ctx) {
			recentCursor.Decode(&recentRevenue)
		}
		recentCursor.Close(ctx)
	}

	lowStock, _ := database.Books().CountDocuments(ctx, bson.M{
		"isActive":   true,
		"stockCount": bson.M{"$gt": 0, "$lte": 5},
	})
	outOfStock, _ := database.Books().CountDocuments(ctx, bson.M{
		"isActive": true,
		"inStock":  false,
	})
	activeBooks, _ := database.Books().CountDocuments(ctx, bson.M{"isActive": true})
	userCount, _ := database.Users().CountDocuments(ctx, bson.M{})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders": gin.H{
				"total":    totalOrders,
				"byStatus": ordersByStatus,
			},
			"revenue": gin.H{
				"total":      revenue.Revenue,
				"paidOrders": revenue.Count,
				"last30Days": recentRevenue.Revenue,
			},
			"catalog": gin.H{
				"activeBooks": activeBooks,
				"lowStock":    lowStock,
				"outOfStock":  outOfStock,
			},
			"users": userCount,
		},
	})
}
