package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	fcerrors "github.com/matzehuels/fitcharts/pkg/errors"
)

// CollectionName is the MongoDB collection holding chart documents.
const CollectionName = "charts"

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI      string
	Database string

	// ConnectTimeout bounds connecting and the initial ping. Default 10s.
	ConnectTimeout time.Duration

	// QueryTimeout bounds each operation. Default 5s.
	QueryTimeout time.Duration
}

// MongoStore is a [Store] backed by MongoDB.
type MongoStore struct {
	client       *mongo.Client
	collection   *mongo.Collection
	queryTimeout time.Duration
	now          func() time.Time
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures the
// owner index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.Database == "" {
		cfg.Database = "fitcharts"
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fcerrors.Wrap(fcerrors.ErrCodeUnavailable, err, "connect mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fcerrors.Wrap(fcerrors.ErrCodeUnavailable, err, "ping mongodb")
	}

	s := NewMongoStoreFromCollection(client.Database(cfg.Database).Collection(CollectionName), cfg.QueryTimeout)
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. The caller owns
// the client.
func NewMongoStoreFromCollection(coll *mongo.Collection, queryTimeout time.Duration) *MongoStore {
	if queryTimeout == 0 {
		queryTimeout = 5 * time.Second
	}
	return &MongoStore{collection: coll, queryTimeout: queryTimeout, now: time.Now}
}

// EnsureIndexes creates the (owner, updated_at) index used by List.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return s.wrapError(err, "create index")
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var doc Document
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.wrapError(err, "get %s", id)
	}
	return &doc, nil
}

func (s *MongoStore) Put(ctx context.Context, doc *Document) error {
	if err := prepare(doc, s.now().UTC().Truncate(time.Millisecond)); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	// created_at is only written on insert so replacements keep the original.
	update := bson.M{
		"$set": bson.M{
			"owner":      doc.Owner,
			"name":       doc.Name,
			"options":    doc.Options,
			"records":    doc.Records,
			"updated_at": doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": doc.CreatedAt},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"created_at": 1})

	var stored struct {
		CreatedAt time.Time `bson:"created_at"`
	}
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": doc.ID}, update, opts).Decode(&stored)
	if err != nil {
		return s.wrapError(err, "put %s", doc.ID)
	}
	if !stored.CreatedAt.IsZero() {
		doc.CreatedAt = stored.CreatedAt.UTC()
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return s.wrapError(err, "delete %s", id)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, owner string) ([]*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, s.wrapError(err, "list %s", owner)
	}
	defer func() { _ = cursor.Close(ctx) }()

	docs := []*Document{}
	for cursor.Next(ctx) {
		var doc Document
		if err := cursor.Decode(&doc); err != nil {
			return nil, s.wrapError(err, "decode")
		}
		docs = append(docs, &doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, s.wrapError(err, "list %s", owner)
	}
	return docs, nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) wrapError(err error, format string, args ...any) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fcerrors.Wrap(fcerrors.ErrCodeTimeout, err, format, args...)
	}
	return fcerrors.Wrap(fcerrors.ErrCodeStorage, err, format, args...)
}

var _ Store = (*MongoStore)(nil)
