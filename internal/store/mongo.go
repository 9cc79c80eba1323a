package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/serroba/expiring-shortener/internal/shortener"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection is the collection holding url documents.
const MongoCollection = "urls"

type urlDocument struct {
	OriginalURL string    `bson:"originalUrl"`
	ShortURL    string    `bson:"shortUrl"`
	ExpiresAt   time.Time `bson:"expiresAt"`
	CreatedAt   time.Time `bson:"createdAt,omitempty"`
}

// MongoStore is a MongoDB implementation of shortener.Repository.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a new MongoDB-backed URL store.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(MongoCollection)}
}

// MaxRetention is the longest retention a TTL index can hold.
const MaxRetention = time.Duration(math.MaxInt32) * time.Second

const ttlIndexName = "expiresAt_ttl"

// EnsureIndexes creates the unique index on shortUrl and reconciles the TTL
// index with retention. A positive retention makes MongoDB remove documents
// that have been expired for longer than retention; zero drops the index.
func (m *MongoStore) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	if retention > MaxRetention {
		return fmt.Errorf("retention %s exceeds %s", retention, MaxRetention)
	}

	indexes := m.collection.Indexes()

	_, err := indexes.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shortUrl", Value: 1}},
		Options: options.Index().SetName("shortUrl_unique").SetUnique(true),
	})
	if err != nil {
		return err
	}

	current, found, err := m.ttlSeconds(ctx)
	if err != nil {
		return err
	}

	if retention <= 0 {
		if !found {
			return nil
		}

		_, err := indexes.DropOne(ctx, ttlIndexName)

		return err
	}

	seconds := int32(retention / time.Second)

	if !found {
		_, err := indexes.CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName(ttlIndexName).SetExpireAfterSeconds(seconds),
		})

		return err
	}

	if current == seconds {
		return nil
	}

	// collMod changes expireAfterSeconds in place; CreateOne would conflict.
	return m.collection.Database().RunCommand(ctx, bson.D{
		{Key: "collMod", Value: m.collection.Name()},
		{Key: "index", Value: bson.D{
			{Key: "name", Value: ttlIndexName},
			{Key: "expireAfterSeconds", Value: seconds},
		}},
	}).Err()
}

func (m *MongoStore) ttlSeconds(ctx context.Context) (int32, bool, error) {
	specs, err := m.collection.Indexes().ListSpecifications(ctx)
	if err != nil {
		return 0, false, err
	}

	for _, spec := range specs {
		if spec.Name != ttlIndexName {
			continue
		}

		if spec.ExpireAfterSeconds == nil {
			return 0, true, nil
		}

		return *spec.ExpireAfterSeconds, true, nil
	}

	return 0, false, nil
}

func (m *MongoStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	_, err := m.collection.InsertOne(ctx, urlDocument{
		OriginalURL: shortURL.OriginalURL,
		ShortURL:    string(shortURL.Code),
		ExpiresAt:   shortURL.ExpiresAt,
		CreatedAt:   shortURL.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shortener.ErrCodeConflict
		}

		return err
	}

	return nil
}

func (m *MongoStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	var doc urlDocument

	err := m.collection.FindOne(ctx, bson.D{{Key: "shortUrl", Value: string(code)}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &shortener.ShortURL{
		Code:        shortener.Code(doc.ShortURL),
		OriginalURL: doc.OriginalURL,
		CreatedAt:   doc.CreatedAt,
		ExpiresAt:   doc.ExpiresAt,
	}, nil
}

var _ shortener.Repository = (*MongoStore)(nil)
