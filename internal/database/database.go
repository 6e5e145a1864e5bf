package database

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	MongoClient *mongo.Client
	Mongo       *mongo.Database
	Redis       *redis.Client
	Elastic     *elasticsearch.Client // nil when ELASTIC_URL is not configured
)

// Connect wires up MongoDB, Redis and (optionally) Elasticsearch. Mongo and
// Redis are hard requirements; the process refuses to start without them.
func Connect() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	connectMongo(ctx)
	connectRedis(ctx)
	connectElastic()
	ensureIndexes(ctx)

	log.Println("✅ all datastores connected")
}

// ensureIndexes creates the unique and lookup indexes the handlers rely on.
// Sparse on email/phone/isbn because those fields are optional per document.
func ensureIndexes(ctx context.Context) {
	sparse := func(key string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		}
	}

	_, err := Books().Indexes().CreateMany(ctx, []mongo.IndexModel{
		sparse("isbn"),
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "salesCount", Value: -1}}},
	})
	if err != nil {
		log.Printf("⚠️ books index creation: %v", err)
	}

	if _, err := Users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		sparse("email"),
		sparse("phone"),
	}); err != nil {
		log.Printf("⚠️ users index creation: %v", err)
	}

	if _, err := Orders().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		log.Printf("⚠️ orders index creation: %v", err)
	}
}

func connectMongo(ctx context.Context) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "pustakalu"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("❌ MongoDB connect failed: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("❌ MongoDB ping failed: %v", err)
	}

	MongoClient = client
	Mongo = client.Database(dbName)
	log.Println("✅ connected to MongoDB:", dbName)
}

func connectRedis(ctx context.Context) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Fatalf("❌ Redis connect failed: %v", err)
	}
	log.Println("✅ connected to Redis:", addr)
}

// connectElastic is best effort: search falls back to Mongo regex queries
// when no cluster is configured.
func connectElastic() {
	url := os.Getenv("ELASTIC_URL")
	if url == "" {
		log.Println("ℹ️  ELASTIC_URL not set — catalog search uses MongoDB only")
		return
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  os.Getenv("ELASTIC_USERNAME"),
		Password:  os.Getenv("ELASTIC_PASSWORD"),
	})
	if err != nil {
		log.Printf("⚠️ Elasticsearch client error: %v — search falls back to MongoDB", err)
		return
	}
	res, err := client.Info()
	if err != nil {
		log.Printf("⚠️ Elasticsearch unreachable: %v — search falls back to MongoDB", err)
		return
	}
	defer res.Body.Close()

	Elastic = client
	log.Println("✅ connected to Elasticsearch")
}

// Books, Users and Orders are the three collections of the store.
func Books() *mongo.Collection  { return Mongo.Collection("books") }
func Users() *mongo.Collection  { return Mongo.Collection("users") }
func Orders() *mongo.Collection { return Mongo.Collection("orders") }
