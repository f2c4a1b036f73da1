package clinical

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/panacea/panacea/internal/platform/mongodb"
	"github.com/panacea/panacea/pkg/pagination"
)

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection(mongodb.MedicalRecords)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (m *mongoRepo) Create(ctx context.Context, r *Record) error {
	_, err := m.coll.InsertOne(ctx, r)
	return mongodb.TranslateError(err)
}

func (m *mongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Record, error) {
	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []*Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *mongoRepo) ListByPatient(ctx context.Context, patientID string, page pagination.Params) ([]*Record, int, error) {
	filter := bson.M{"patientId": patientID}
	total, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(newestFirst).SetSkip(int64(page.Offset))
	if !page.Unbounded() {
		opts.SetLimit(int64(page.Limit))
	}
	out, err := m.find(ctx, filter, opts)
	return out, int(total), err
}

func (m *mongoRepo) Recent(ctx context.Context, limit int) ([]*Record, error) {
	return m.find(ctx, bson.M{}, options.Find().SetSort(newestFirst).SetLimit(int64(limit)))
}
