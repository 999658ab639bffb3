// Package mongostore persists remember-me records in MongoDB.
//
// One document per chain, keyed by series (_id), so the series is unique by
// construction. EnsureIndexes creates the user_id and expires indexes used by
// DeleteAllByUser and SweepExpired.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/rememberme/core/rememberme"
)

// DefaultCollection is the collection name used by cmd/server.
const DefaultCollection = "auth_tokens"

type document struct {
	Series   string    `bson:"_id"`
	Token    string    `bson:"token"`
	UserID   string    `bson:"user_id"`
	Created  time.Time `bson:"created"`
	Modified time.Time `bson:"modified"`
	Expires  time.Time `bson:"expires"`
}

func (d document) record() (rememberme.Record, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return rememberme.Record{}, err
	}
	return rememberme.Record{
		Series:    d.Series,
		TokenHash: d.Token,
		UserID:    userID,
		CreatedAt: d.Created,
		UpdatedAt: d.Modified,
		ExpiresAt: d.Expires,
	}, nil
}

// Collection is the subset of *mongo.Collection used by Store.
type Collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult
	DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...options.Lister[options.DeleteManyOptions]) (*mongo.DeleteResult, error)
	Indexes() mongo.IndexView
}

var _ Collection = (*mongo.Collection)(nil)

// Store implements rememberme.Store on a MongoDB collection.
type Store struct {
	coll Collection
	now  func() time.Time
}

var _ rememberme.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created/modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store on coll, usually a *mongo.Collection.
func New(coll Collection, opts ...Option) *Store {
	s := &Store{coll: coll, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureIndexes creates the secondary indexes. Safe to call on every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires", Value: 1}}},
	})
	return err
}

// FindBySeries loads the record for series.
func (s *Store) FindBySeries(ctx context.Context, series string) (rememberme.Record, error) {
	var doc document
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: series}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return rememberme.Record{}, rememberme.ErrNotFound
		}
		return rememberme.Record{}, err
	}
	return doc.record()
}

// Save upserts a new record or rotates a persisted one with a single
// findAndModify. Rotating a document that is gone reports rememberme.ErrNotFound.
func (s *Store) Save(ctx context.Context, rec *rememberme.Record) error {
	now := s.now().UTC().Truncate(time.Millisecond)

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "token", Value: rec.TokenHash},
			{Key: "modified", Value: now},
			{Key: "expires", Value: rec.ExpiresAt},
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if !rec.IsPersisted() {
		update = append(update, bson.E{Key: "$setOnInsert", Value: bson.D{
			{Key: "user_id", Value: rec.UserID.String()},
			{Key: "created", Value: now},
		}})
		opts.SetUpsert(true)
	}

	var doc document
	err := s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: rec.Series}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return rememberme.ErrNotFound
		}
		return err
	}

	saved, err := doc.record()
	if err != nil {
		return err
	}
	rec.CreatedAt = saved.CreatedAt
	rec.UpdatedAt = saved.UpdatedAt
	rec.UserID = saved.UserID
	return nil
}

// DeleteBySeries removes one chain.
func (s *Store) DeleteBySeries(ctx context.Context, series string) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: series}})
	return err
}

// DeleteAllByUser removes every chain of userID.
func (s *Store) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "user_id", Value: userID.String()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SweepExpired removes records that expired before now.
func (s *Store) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "expires", Value: bson.D{{Key: "$lt", Value: now}}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
