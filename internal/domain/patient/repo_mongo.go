package patient

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
	return &mongoRepo{coll: db.Collection(mongodb.Patients)}
}

// activeFilter adds the archived-row exclusion to filter. Every active read
// builds its filter here.
func activeFilter(filter bson.M) bson.M {
	out := bson.M{"deleted": false}
	for k, v := range filter {
		out[k] = v
	}
	return out
}

func (r *mongoRepo) Create(ctx context.Context, p *Patient) error {
	_, err := r.coll.InsertOne(ctx, p)
	return mongodb.TranslateError(err)
}

func (r *mongoRepo) GetActive(ctx context.Context, id string) (*Patient, error) {
	var p Patient
	if err := r.coll.FindOne(ctx, activeFilter(bson.M{"_id": id})).Decode(&p); err != nil {
		return nil, mongodb.TranslateError(err)
	}
	return &p, nil
}

func (r *mongoRepo) ListActive(ctx context.Context, page pagination.Params) ([]*Patient, int, error) {
	filter := activeFilter(nil)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page.Offset))
	if !page.Unbounded() {
		opts.SetLimit(int64(page.Limit))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []*Patient
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *mongoRepo) Update(ctx context.Context, p *Patient) error {
	res, err := r.coll.UpdateOne(ctx, activeFilter(bson.M{"_id": p.ID}), bson.M{"$set": bson.M{
		"name":           p.Name,
		"email":          p.Email,
		"phone":          p.Phone,
		"dob":            p.DOB,
		"gender":         p.Gender,
		"address":        p.Address,
		"medicalHistory": p.MedicalHistory,
		"updatedAt":      p.UpdatedAt,
	}})
	if err != nil {
		return mongodb.TranslateError(err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *mongoRepo) Archive(ctx context.Context, id string, at time.Time) (*Patient, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p Patient
	err := r.coll.FindOneAndUpdate(ctx, activeFilter(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"deleted":   true,
		"deletedAt": at,
		"updatedAt": at,
	}}, opts).Decode(&p)
	if err != nil {
		return nil, mongodb.TranslateError(err)
	}
	return &p, nil
}

func (r *mongoRepo) CountActive(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, activeFilter(nil))
	return int(n), err
}

func (r *mongoRepo) FindByIDs(ctx context.Context, ids []string) ([]*Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var out []*Patient
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
