package models

import "time"

// Transaction statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Appointment is a booked service slot.
type Appointment struct {
	ID          string    `bson:"id" json:"id"`
	BusinessID  string    `bson:"business_id" json:"businessId"`
	CallID      string    `bson:"call_id,omitempty" json:"callId,omitempty"`
	ServiceID   string    `bson:"service_id" json:"serviceId"`
	ServiceName string    `bson:"service_name" json:"serviceName"`
	Name        string    `bson:"name" json:"name"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Start       time.Time `bson:"start" json:"start"`
	End         time.Time `bson:"end" json:"end"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// Overlaps reports whether the appointment intersects [start, end).
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.Start.Before(end) && start.Before(a.End)
}
