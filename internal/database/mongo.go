package database

import (
	"context"
	"time"

	"github.com/nfrund/espresso/internal/config"
	"github.com/nfrund/espresso/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	driverMongo       = "mongo"
	messageCollection = "messages"
)

var _ domain.MessageRepository = (*MongoStore)(nil)

// mongoMessage is the document shape of the messages collection.
type mongoMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	RoomID    string             `bson:"roomId"`
	Username  string             `bson:"username"`
	Text      string             `bson:"text"`
	Timestamp time.Time          `bson:"timestamp"`
}

// MongoStore implements the message repository on a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	limit  int
}

// ConnectMongo connects to MongoDB, verifies the connection and ensures the
// room/timestamp index exists.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig, limit int) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, NewStoreError(driverMongo, "connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, NewStoreError(driverMongo, "ping", err)
	}

	store := NewMongoStore(client, client.Database(cfg.DB).Collection(messageCollection), limit)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

// NewMongoStore creates a store on an existing collection.
func NewMongoStore(client *mongo.Client, coll *mongo.Collection, limit int) *MongoStore {
	return &MongoStore{client: client, coll: coll, limit: effectiveLimit(limit)}
}

// EnsureIndexes creates the index used by RecentMessages.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return NewStoreError(driverMongo, "create index", err)
	}
	return nil
}

// SaveMessage inserts a message document.
func (s *MongoStore) SaveMessage(ctx context.Context, msg domain.NewMessage) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.coll.InsertOne(ctx, mongoMessage{
		RoomID:    msg.RoomID,
		Username:  msg.Username,
		Text:      msg.Text,
		Timestamp: ts.UTC(),
	})
	if err != nil {
		return NewStoreError(driverMongo, "save message", err)
	}
	return nil
}

// RecentMessages returns the newest messages of a room, newest first.
func (s *MongoStore) RecentMessages(ctx context.Context, roomID string) ([]domain.StoredMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(s.limit))

	cursor, err := s.coll.Find(ctx, bson.M{"roomId": roomID}, opts)
	if err != nil {
		return nil, NewStoreError(driverMongo, "recent messages", err)
	}

	var docs []mongoMessage
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, NewStoreError(driverMongo, "recent messages", err)
	}

	messages := make([]domain.StoredMessage, 0, len(docs))
	for _, d := range docs {
		messages = append(messages, domain.StoredMessage{
			RoomID:    d.RoomID,
			Username:  d.Username,
			Text:      d.Text,
			Timestamp: d.Timestamp,
		})
	}
	return messages, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return NewStoreError(driverMongo, "close", err)
	}
	return nil
}
