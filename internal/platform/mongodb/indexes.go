package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Indexes lists the index models per collection.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
			{Keys: bson.D{{Key: "role", Value: 1}}, Options: options.Index().SetName("role")},
		},
		Patients: {
			{
				Keys: bson.D{{Key: "phone", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("active_phone_unique").
					SetPartialFilterExpression(bson.D{{Key: "deleted", Value: false}}),
			},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at")},
		},
		Appointments: {
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetName("date")},
			{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetName("patient_date")},
			{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status")},
		},
		MedicalRecords: {
			{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("patient_created_at")},
			{Keys: bson.D{{Key: "doctorId", Value: 1}}, Options: options.Index().SetName("doctor")},
			{Keys: bson.D{{Key: "appointmentId", Value: 1}}, Options: options.Index().SetName("appointment")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at")},
		},
		Wards: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("name_unique")},
		},
		AuditLogs: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at")},
			{Keys: bson.D{{Key: "action", Value: 1}}, Options: options.Index().SetName("action")},
		},
	}
}

// EnsureIndexes creates every index in Indexes. Creating an existing index
// with the same definition is a no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) (int, error) {
	n := 0
	for coll, models := range Indexes() {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return n, fmt.Errorf("create indexes on %s: %w", coll, err)
		}
		n += len(names)
	}
	return n, nil
}
