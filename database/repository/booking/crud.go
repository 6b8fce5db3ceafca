// File: database/repository/booking/crud.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"phonedesk/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// overlapFilter matches live appointments intersecting [from, to).
func overlapFilter(businessID string, from, to time.Time) bson.M {
	return bson.M{
		"business_id": businessID,
		"status":      bson.M{"$ne": models.StatusCancelled},
		"start":       bson.M{"$lt": to},
		"end":         bson.M{"$gt": from},
	}
}

func (r *mongoBookingRepo) ListAppointments(ctx context.Context, businessID string, from, to time.Time) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.appointments.Find(ctx, overlapFilter(businessID, from, to))
	if err != nil {
		return nil, fmt.Errorf("error listing appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// dayKeys returns the calendar-day documents an appointment touches, one per
// UTC day in [Start, End).
func dayKeys(appt *models.Appointment) []string {
	first := appt.Start.UTC().Truncate(24 * time.Hour)
	last := first
	if appt.End.After(appt.Start) {
		last = appt.End.Add(-time.Nanosecond).UTC().Truncate(24 * time.Hour)
	}
	var keys []string
	for d := first; !d.After(last); d = d.Add(24 * time.Hour) {
		keys = append(keys, appt.BusinessID+":"+d.Format("2006-01-02"))
	}
	return keys
}

// insertError maps a failed insert; a second write for the same call hits the
// unique call_id index.
func insertError(what string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyRecorded
	}
	return fmt.Errorf("insert %s failed: %w", what, err)
}

// ensureDays creates the calendar-day documents outside the transaction so
// the transaction itself only updates existing documents.
func (r *mongoBookingRepo) ensureDays(ctx context.Context, businessID string, keys []string) error {
	for _, key := range keys {
		_, err := r.days.UpdateOne(ctx,
			bson.M{"_id": key},
			bson.M{"$setOnInsert": bson.M{"business_id": businessID, "bookings": 0}},
			options.Update().SetUpsert(true),
		)
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to prepare calendar day %s: %w", key, err)
		}
	}
	return nil
}

// CreateAppointment inserts the appointment inside a transaction that first
// claims the calendar day and then re-checks for overlaps. Two bookings on the
// same day write the same day document, so the later transaction conflicts,
// is retried and then sees the earlier appointment.
func (r *mongoBookingRepo) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.Status == "" {
		appt.Status = models.StatusConfirmed
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}

	keys := dayKeys(appt)
	if err := r.ensureDays(ctx, appt.BusinessID, keys); err != nil {
		return err
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) (interface{}, error) {
		for _, key := range keys {
			if _, err := r.days.UpdateOne(sc,
				bson.M{"_id": key},
				bson.M{"$inc": bson.M{"bookings": 1}, "$set": bson.M{"updated_at": time.Now().UTC()}},
			); err != nil {
				return nil, fmt.Errorf("claim calendar day failed: %w", err)
			}
		}
		if appt.CallID != "" {
			dup, err := r.appointments.CountDocuments(sc, bson.M{"call_id": appt.CallID})
			if err != nil {
				return nil, fmt.Errorf("call lookup failed: %w", err)
			}
			if dup > 0 {
				return nil, ErrAlreadyRecorded
			}
		}
		n, err := r.appointments.CountDocuments(sc, overlapFilter(appt.BusinessID, appt.Start, appt.End))
		if err != nil {
			return nil, fmt.Errorf("overlap check failed: %w", err)
		}
		if n > 0 {
			return nil, ErrSlotTaken
		}
		if _, err := r.appointments.InsertOne(sc, appt); err != nil {
			return nil, insertError("appointment", err)
		}
		return nil, nil
	}

	// WithTransaction retries transient write conflicts from a concurrent booking.
	if _, err := sess.WithTransaction(ctx, txnFn); err != nil {
		return fmt.Errorf("appointment transaction failed: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.StatusConfirmed
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		return insertError("order", err)
	}
	return nil
}
