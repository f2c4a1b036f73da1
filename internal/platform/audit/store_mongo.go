package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/panacea/panacea/internal/platform/mongodb"
	"github.com/panacea/panacea/pkg/pagination"
)

type mongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{coll: db.Collection(mongodb.AuditLogs)}
}

func (s *mongoStore) Insert(ctx context.Context, e *Entry) error {
	_, err := s.coll.InsertOne(ctx, e)
	return mongodb.TranslateError(err)
}

func (s *mongoStore) List(ctx context.Context, p pagination.Params) ([]*Entry, int, error) {
	total, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(int64(p.Offset))
	if !p.Unbounded() {
		opts.SetLimit(int64(p.Limit))
	}
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []*Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}
