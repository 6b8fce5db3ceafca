// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// appointmentIndexes are the indexes on the appointments collection.
func appointmentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// conflict lookups
		{
			Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "start", Value: 1}, {Key: "end", Value: 1}},
			Options: options.Index().SetName("business_start_end_idx"),
		},
		// one appointment per call; appointments entered without a call are exempt
		{
			Keys: bson.D{{Key: "call_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("call_id_idx").
				SetPartialFilterExpression(bson.M{"call_id": bson.M{"$exists": true}}),
		},
	}
}

func orderIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// one finalized order per call
		{
			Keys:    bson.D{{Key: "call_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("call_id_idx"),
		},
	}
}

// EnsureIndexes creates the indexes on appointments and orders.
func (r *mongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.appointments.Indexes().CreateMany(ctx, appointmentIndexes()); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	if _, err := r.orders.Indexes().CreateMany(ctx, orderIndexes()); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}
