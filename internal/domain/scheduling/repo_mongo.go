package scheduling

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/mongodb"
	"github.com/panacea/panacea/pkg/pagination"
)

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection(mongodb.Appointments)}
}

func (f Filter) mongoFilter() bson.M {
	m := bson.M{}
	if f.PatientID != "" {
		m["patientId"] = f.PatientID
	}
	return m
}

func (r *mongoRepo) Create(ctx context.Context, a *Appointment) error {
	_, err := r.coll.InsertOne(ctx, a)
	return mongodb.TranslateError(err)
}

func (r *mongoRepo) Get(ctx context.Context, id string) (*Appointment, error) {
	var a Appointment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, mongodb.TranslateError(err)
	}
	return &a, nil
}

func (r *mongoRepo) List(ctx context.Context, f Filter, page pagination.Params) ([]*Appointment, int, error) {
	filter := f.mongoFilter()
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(page.Offset))
	if !page.Unbounded() {
		opts.SetLimit(int64(page.Limit))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []*Appointment
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *mongoRepo) Update(ctx context.Context, a *Appointment) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": bson.M{
		"date":      a.Date,
		"reason":    a.Reason,
		"status":    a.Status,
		"notes":     a.Notes,
		"updatedAt": a.UpdatedAt,
	}})
	if err != nil {
		return mongodb.TranslateError(err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoRepo) SetStatus(ctx context.Context, id string, status Status, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status, "updatedAt": at}})
	if err != nil {
		return mongodb.TranslateError(err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoRepo) CountByStatus(ctx context.Context, status Status) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"status": status})
	return int(n), err
}
