package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures NewMongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps records as documents with a unique index on the pair.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects, pings and ensures the pair index exists.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, unavailable("mongo", fmt.Errorf("connect: %w", err))
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, unavailable("mongo", fmt.Errorf("ping: %w", err))
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "base_drawing_id", Value: 1},
			{Key: "candidate_drawing_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("pair"),
	})
	if err != nil {
		return unavailable("mongo", fmt.Errorf("create index: %w", err))
	}
	return nil
}

func pairFilter(base, candidate string) bson.D {
	return bson.D{
		{Key: "base_drawing_id", Value: base},
		{Key: "candidate_drawing_id", Value: candidate},
	}
}

func (s *MongoStore) Save(ctx context.Context, rec Record) (Record, error) {
	if err := validatePair(rec.BaseDrawingID, rec.CandidateDrawingID); err != nil {
		return Record{}, err
	}
	filter := pairFilter(rec.BaseDrawingID, rec.CandidateDrawingID)

	var existing *Record
	var old Record
	err := s.coll.FindOne(ctx, filter).Decode(&old)
	switch {
	case err == nil:
		existing = &old
	case !stderrors.Is(err, mongo.ErrNoDocuments):
		return Record{}, unavailable("mongo", err)
	}

	// BSON dates carry millisecond precision; truncate so the returned
	// record matches what a later Get reads back.
	out, err := prepare(rec, existing, time.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return Record{}, err
	}
	_, err = s.coll.ReplaceOne(ctx, filter, out, options.Replace().SetUpsert(true))
	if err != nil {
		return Record{}, unavailable("mongo", err)
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, base, candidate string) (Record, error) {
	if err := validatePair(base, candidate); err != nil {
		return Record{}, err
	}
	var rec Record
	err := s.coll.FindOne(ctx, pairFilter(base, candidate)).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, notFound(base, candidate)
	}
	if err != nil {
		return Record{}, unavailable("mongo", err)
	}
	return rec, nil
}

func (s *MongoStore) Delete(ctx context.Context, base, candidate string) (bool, error) {
	if err := validatePair(base, candidate); err != nil {
		return false, err
	}
	res, err := s.coll.DeleteOne(ctx, pairFilter(base, candidate))
	if err != nil {
		return false, unavailable("mongo", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) List(ctx context.Context, base string) ([]Record, error) {
	if err := validateBase(base); err != nil {
		return nil, err
	}
	cur, err := s.coll.Find(ctx,
		bson.D{{Key: "base_drawing_id", Value: base}},
		options.Find().SetSort(bson.D{{Key: "candidate_drawing_id", Value: 1}}),
	)
	if err != nil {
		return nil, unavailable("mongo", err)
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, unavailable("mongo", err)
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
