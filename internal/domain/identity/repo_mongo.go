package identity

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/internal/platform/mongodb"
)

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection(mongodb.Users)}
}

func (r *mongoRepo) Create(ctx context.Context, u *User) error {
	_, err := r.coll.InsertOne(ctx, u)
	return mongodb.TranslateError(err)
}

func (r *mongoRepo) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mongodb.TranslateError(err)
	}
	return &u, nil
}

func (r *mongoRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoRepo) FindByIDs(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var out []*User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoRepo) CountByRole(ctx context.Context, role auth.Role) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"role": role})
	return int(n), err
}
