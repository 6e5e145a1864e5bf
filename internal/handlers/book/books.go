package book

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/models"
	"pustakalu_backend/internal/search"
)

// ListBooks returns the active catalog with pagination, category/language
// filters, keyword search and sorting.
func ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{"isActive": true}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if language := c.Query("language"); language != "" {
		filter["language"] = language
	}
	if keyword := c.Query("q"); keyword != "" {
		regex := bson.M{"$regex": keyword, "$options": "i"}
		filter["$or"] = []bson.M{
			{"title": regex},
			{"titleTelugu": regex},
			{"author": regex},
			{"authorTelugu": regex},
			{"publisher": regex},
		}
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	switch c.Query("sort") {
	case "price_asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sort = bson.D{{Key: "price", Value: -1}}
	case "rating":
		sort = bson.D{{Key: "rating", Value: -1}}
	case "bestselling":
		sort = bson.D{{Key: "salesCount", Value: -1}}
	}

	ctx := c.Request.Context()
	total, err := database.Books().CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load catalog"})
		return
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"reviews": 0})

	cursor, err := database.Books().Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load catalog"})
		return
	}
	defer cursor.Close(ctx)

	books := []models.Book{}
	if err := cursor.All(ctx, &books); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to decode catalog"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"books": books,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
				"pages": (total + int64(limit) - 1) / int64(limit),
			},
		},
	})
}

// GetBook returns one active book with its embedded reviews.
func GetBook(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid book id"})
		return
	}

	var book models.Book
	err = database.Books().FindOne(c.Request.Context(), bson.M{"_id": id, "isActive": true}).Decode(&book)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "book not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": book})
}

// FeaturedCacheKey holds the rendered featured shelf in Redis; admin catalog
// writes drop it.
const FeaturedCacheKey = "cache:featured_books"

const featuredCacheTTL = 5 * time.Minute

// GetFeaturedBooks returns the curated homepage picks, served from the Redis
// hot cache when warm.
func GetFeaturedBooks(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := database.Redis.Get(ctx, FeaturedCacheKey).Result(); err == nil {
		books := []models.Book{}
		if json.Unmarshal([]byte(cached), &books) == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": books})
			return
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "salesCount", Value: -1}}).
		SetLimit(12).
		SetProjection(bson.M{"reviews": 0})

	cursor, err := database.Books().Find(ctx, bson.M{"isActive": true, "featured": true}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load featured books"})
		return
	}
	defer cursor.Close(ctx)

	books := []models.Book{}
	if err := cursor.All(ctx, &books); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to decode featured books"})
		return
	}

	if payload, err := json.Marshal(books); err == nil {
		database.Redis.Set(ctx, FeaturedCacheKey, payload, featuredCacheTTL)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": books})
}

// SearchBooks prefers Elasticsearch and falls back to the Mongo regex path
// when no cluster is configured or the query fails.
func SearchBooks(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "query parameter q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ids, err := search.Books(c.Request.Context(), database.Elastic, keyword, limit)
	if err != nil {
		if database.Elastic != nil {
			log.Printf("⚠️ elastic search failed, falling back to mongo: %v", err)
		}
		ListBooks(c)
		return
	}

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}

	ctx := c.Request.Context()
	cursor, err := database.Books().Find(ctx,
		bson.M{"_id": bson.M{"$in": objectIDs}, "isActive": true},
		options.Find().SetProjection(bson.M{"reviews": 0}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "search failed"})
		return
	}
	defer cursor.Close(ctx)

	found := []models.Book{}
	if err := cursor.All(ctx, &found); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "search failed"})
		return
	}

	// keep elastic's relevance order
	byID := make(map[primitive.ObjectID]models.Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	books := make([]models.Book, 0, len(found))
	for _, oid := range objectIDs {
		if b, ok := byID[oid]; ok {
			books = append(books, b)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": books})
}
