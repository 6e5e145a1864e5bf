package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is a catalog entry. Titles and descriptions carry Telugu variants next
// to the transliterated ones because most of the catalog is Telugu literature.
type Book struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title             string             `bson:"title" json:"title"`
	TitleTelugu       string             `bson:"titleTelugu,omitempty" json:"titleTelugu,omitempty"`
	Author            string             `bson:"author" json:"author"`
	AuthorTelugu      string             `bson:"authorTelugu,omitempty" json:"authorTelugu,omitempty"`
	Publisher         string             `bson:"publisher,omitempty" json:"publisher,omitempty"`
	PublisherTelugu   string             `bson:"publisherTelugu,omitempty" json:"publisherTelugu,omitempty"`
	ISBN              string             `bson:"isbn" json:"isbn"`
	Category          string             `bson:"category,omitempty" json:"category,omitempty"`
	Language          string             `bson:"language" json:"language"`
	Pages             int                `bson:"pages,omitempty" json:"pages,omitempty"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	DescriptionTelugu string             `bson:"descriptionTelugu,omitempty" json:"descriptionTelugu,omitempty"`
	ImageURL          string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Price             float64            `bson:"price" json:"price"`
	OriginalPrice     float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	DiscountPercent   int                `bson:"discountPercent,omitempty" json:"discountPercent,omitempty"`
	StockCount        int                `bson:"stockCount" json:"stockCount"`
	InStock           bool               `bson:"inStock" json:"inStock"`
	SalesCount        int                `bson:"salesCount" json:"salesCount"`
	Rating            float64            `bson:"rating" json:"rating"`
	ReviewCount       int                `bson:"reviewCount" json:"reviewCount"`
	Reviews           []Review           `bson:"reviews,omitempty" json:"reviews,omitempty"`
	Featured          bool               `bson:"featured" json:"featured"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Review is embedded in the book document, one per user.
type Review struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	Rating    int                `bson:"rating" json:"rating"` // 1-5
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ApplyStockDelta mutates stockCount and keeps the inStock flag consistent.
// Invariant: inStock == (stockCount > 0) after every stock mutation.
func (b *Book) ApplyStockDelta(delta int) {
	b.StockCount += delta
	if b.StockCount < 0 {
		b.StockCount = 0
	}
	b.InStock = b.StockCount > 0
	b.UpdatedAt = time.Now()
}

// RecomputeRating refreshes the derived rating fields from the embedded reviews.
func (b *Book) RecomputeRating() {
	b.ReviewCount = len(b.Reviews)
	if b.ReviewCount == 0 {
		b.Rating = 0
		return
	}
	sum := 0
	for _, r := range b.Reviews {
		sum += r.Rating
	}
	// one decimal, the way the storefront displays it
	b.Rating = float64(int(float64(sum)/float64(b.ReviewCount)*10+0.5)) / 10
}

// HasReviewBy reports whether the user already reviewed this book.
func (b *Book) HasReviewBy(userID primitive.ObjectID) bool {
	for _, r := range b.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
