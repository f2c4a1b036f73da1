package ward

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/panacea/panacea/internal/platform/mongodb"
)

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection(mongodb.Wards)}
}

func (m *mongoRepo) Count(ctx context.Context) (int, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{})
	return int(n), err
}

func (m *mongoRepo) InsertMany(ctx context.Context, wards []*Ward) error {
	docs := make([]any, len(wards))
	for i, w := range wards {
		docs[i] = w
	}
	_, err := m.coll.InsertMany(ctx, docs)
	return mongodb.TranslateError(err)
}

func (m *mongoRepo) List(ctx context.Context) ([]*Ward, error) {
	cur, err := m.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []*Ward
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// setBed is an update pipeline that merges fields into one bed and then
// recounts occupied from the bed flags, capped at capacity.
func setBed(bedID string, fields bson.M, at time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"beds": bson.M{"$map": bson.M{
				"input": "$beds",
				"as":    "b",
				"in": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{"$$b._id", bedID}},
					bson.M{"$mergeObjects": bson.A{"$$b", fields}},
					"$$b",
				}},
			}},
			"updatedAt": at,
		}}},
		{{Key: "$set", Value: bson.M{
			"occupied": bson.M{"$min": bson.A{"$capacity", bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$beds",
				"as":    "b",
				"cond":  "$$b.isOccupied",
			}}}}},
		}}},
	}
}

func guard(wardID, bedID string, occupied bool) bson.M {
	return bson.M{
		"_id":  wardID,
		"beds": bson.M{"$elemMatch": bson.M{"_id": bedID, "isOccupied": occupied}},
	}
}

// classify runs after a guarded update matched nothing, telling a missing
// ward or bed apart from a bed in the wrong state.
func (m *mongoRepo) classify(ctx context.Context, wardID, bedID string, stateErr error) error {
	var current Ward
	if err := m.coll.FindOne(ctx, bson.M{"_id": wardID}).Decode(&current); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrWardNotFound
		}
		return err
	}
	if _, ok := current.Bed(bedID); !ok {
		return ErrBedNotFound
	}
	return stateErr
}

func (m *mongoRepo) Admit(ctx context.Context, wardID, bedID, patientID string, at time.Time) (*Ward, error) {
	var w Ward
	err := m.coll.FindOneAndUpdate(ctx, guard(wardID, bedID, false),
		setBed(bedID, bson.M{"isOccupied": true, "patientId": patientID}, at),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, m.classify(ctx, wardID, bedID, ErrBedTaken)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (m *mongoRepo) Discharge(ctx context.Context, wardID, bedID string, at time.Time) (*Ward, string, error) {
	// The pre-image carries the discharged patient; the post-image is
	// rebuilt from it the same way the pipeline does.
	var w Ward
	err := m.coll.FindOneAndUpdate(ctx, guard(wardID, bedID, true),
		setBed(bedID, bson.M{"isOccupied": false, "patientId": nil}, at),
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, "", m.classify(ctx, wardID, bedID, ErrBedFree)
	}
	if err != nil {
		return nil, "", err
	}

	var patientID string
	occupied := 0
	for i := range w.Beds {
		b := &w.Beds[i]
		if b.ID == bedID {
			patientID = b.PatientID
			b.Occupied, b.PatientID = false, ""
		}
		if b.Occupied {
			occupied++
		}
	}
	w.Occupied = min(w.Capacity, occupied)
	w.UpdatedAt = at
	return &w, patientID, nil
}

func (m *mongoRepo) Totals(ctx context.Context) (Occupancy, error) {
	cur, err := m.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"capacity": bson.M{"$sum": "$capacity"},
			"occupied": bson.M{"$sum": "$occupied"},
		}}},
	})
	if err != nil {
		return Occupancy{}, err
	}
	var rows []Occupancy
	if err := cur.All(ctx, &rows); err != nil {
		return Occupancy{}, err
	}
	if len(rows) == 0 {
		return Occupancy{}, nil
	}
	return rows[0], nil
}
