// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"
	"time"

	"phonedesk/database"
	"phonedesk/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotTaken is returned when an overlapping appointment already exists.
var ErrSlotTaken = errors.New("time slot already taken")

// ErrAlreadyRecorded is returned when the call already has a finalized transaction.
var ErrAlreadyRecorded = errors.New("transaction already recorded for this call")

// BookingRepository persists finalized transactions and answers conflict queries.
type BookingRepository interface {
	// ListAppointments returns non-cancelled appointments overlapping [from, to).
	ListAppointments(ctx context.Context, businessID string, from, to time.Time) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	CreateOrder(ctx context.Context, order *models.Order) error
	EnsureIndexes(ctx context.Context) error
}

type mongoBookingRepo struct {
	client       *mongo.Client
	appointments *mongo.Collection
	orders       *mongo.Collection
	// one document per business and day; every booking on a day writes it
	days *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.Database()
	return &mongoBookingRepo{
		client:       database.MongoClient,
		appointments: db.Collection("appointments"),
		orders:       db.Collection("orders"),
		days:         db.Collection("calendar_days"),
	}
}
