package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/handlers/book"
	"pustakalu_backend/internal/models"
	"pustakalu_backend/internal/search"
)

// dropCatalogCache invalidates the Redis-cached featured shelf after any
// catalog write.
func dropCatalogCache(ctx context.Context) {
	database.Redis.Del(ctx, book.FeaturedCacheKey)
}

type bookRequest struct {
	Title           string  `json:"title" binding:"required"`
	TitleTelugu     string  `json:"titleTelugu"`
	Author          string  `json:"author" binding:"required"`
	AuthorTelugu    string  `json:"authorTelugu"`
	Publisher       string  `json:"publisher"`
	PublisherTelugu string  `json:"publisherTelugu"`
	ISBN            string  `json:"isbn"`
	Description     string  `json:"description"`
	Category        string  `json:"category" binding:"required"`
	Language        string  `json:"language"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	OriginalPrice   float64 `json:"originalPrice"`
	StockCount      int     `json:"stockCount" binding:"min=0"`
	ImageURL        string  `json:"imageUrl"`
	Featured        bool    `json:"featured"`
}

// CreateBook adds a catalog entry. inStock is derived from stockCount, never
// accepted from the client.
func CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "title, author, category and a positive price are required", "details": err.Error()})
		return
	}

	now := time.Now()
	b := models.Book{
		ID:              primitive.NewObjectID(),
		Title:           req.Title,
		TitleTelugu:     req.TitleTelugu,
		Author:          req.Author,
		AuthorTelugu:    req.AuthorTelugu,
		Publisher:       req.Publisher,
		PublisherTelugu: req.PublisherTelugu,
		ISBN:            req.ISBN,
		Description:     req.Description,
		Category:        req.Category,
		Language:        req.Language,
		Price:           req.Price,
		OriginalPrice:   req.OriginalPrice,
		StockCount:      req.StockCount,
		InStock:         req.StockCount > 0,
		ImageURL:        req.ImageURL,
		Featured:        req.Featured,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if b.Language == "" {
		b.Language = "telugu"
	}
	if b.OriginalPrice > b.Price {
		b.DiscountPercent = int((b.OriginalPrice - b.Price) / b.OriginalPrice * 100)
	}

	if _, err := database.Books().InsertOne(c.Request.Context(), b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create book"})
		return
	}
	go search.IndexBook(database.Elastic, &b)
	dropCatalogCache(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": b})
}

// UpdateBook rewrites the editable fields of a book. Stock goes through
// RestockBook so the inStock flag can't drift.
func UpdateBook(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid book id"})
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload", "details": err.Error()})
		return
	}

	set := bson.M{
		"title":           req.Title,
		"titleTelugu":     req.TitleTelugu,
		"author":          req.Author,
		"authorTelugu":    req.AuthorTelugu,
		"publisher":       req.Publisher,
		"publisherTelugu": req.PublisherTelugu,
		"isbn":            req.ISBN,
		"description":     req.Description,
		"category":        req.Category,
		"language":        req.Language,
		"price":           req.Price,
		"originalPrice":   req.OriginalPrice,
		"imageUrl":        req.ImageURL,
		"featured":        req.Featured,
		"updatedAt":       time.Now(),
	}
	if req.OriginalPrice > req.Price {
		set["discountPercent"] = int((req.OriginalPrice - req.Price) / req.OriginalPrice * 100)
	} else {
		set["discountPercent"] = 0
	}

	var b models.Book
	err = database.Books().FindOneAndUpdate(c.Request.Context(),
		bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "book not found"})
		return
	}
	go search.IndexBook(database.Elastic, &b)
	dropCatalogCache(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"success": true, "data": b})
}

// RestockBook sets the absolute stock count and keeps the inStock flag in
// step.
func RestockBook(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid book id"})
		return
	}

	var req struct {
		StockCount *int `json:"stockCount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || *req.StockCount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "stockCount must be zero or more"})
		return
	}

	var b models.Book
	err = database.Books().FindOneAndUpdate(c.Request.Context(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"stockCount": *req.StockCount,
			"inStock":    *req.StockCount > 0,
			"updatedAt":  time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "book not found"})
		return
	}
	go search.IndexBook(database.Elastic, &b)
	dropCatalogCache(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"stockCount": b.StockCount,
		"inStock":    b.InStock,
	}})
}

// DeactivateBook soft-deletes a book: it disappears from the catalog but stays
// referenced by past order snapshots.
func DeactivateBook(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid book id"})
		return
	}

	var b models.Book
	err = database.Books().FindOneAndUpdate(c.Request.Context(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "book not found"})
		return
	}
	go search.IndexBook(database.Elastic, &b)
	dropCatalogCache(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "book deactivated"})
}
