package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// MongoStore is a MongoDB-backed Store.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and uses the "figures" collection of the
// given database. The connection is verified with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fwerrors.Wrap(fwerrors.ErrCodeInvalidConfig, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fwerrors.Wrap(fwerrors.ErrCodeInvalidConfig, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("figures"),
	}, nil
}

// Put inserts or replaces the record under its ID.
func (s *MongoStore) Put(ctx context.Context, rec Record) error {
	filter := bson.M{"_id": rec.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, filter, rec, opts); err != nil {
		return fwerrors.Wrap(fwerrors.ErrCodeInternal, err, "store figure %q", rec.ID)
	}
	return nil
}

// Get retrieves the record with the given ID.
func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, fwerrors.New(fwerrors.ErrCodeFigureNotFound, "figure %q not found", id)
	}
	if err != nil {
		return Record{}, fwerrors.Wrap(fwerrors.ErrCodeInternal, err, "load figure %q", id)
	}
	return rec, nil
}

// Delete removes the record with the given ID.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fwerrors.Wrap(fwerrors.ErrCodeInternal, err, "delete figure %q", id)
	}
	if res.DeletedCount == 0 {
		return fwerrors.New(fwerrors.ErrCodeFigureNotFound, "figure %q not found", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
