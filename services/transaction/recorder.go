// File: services/transaction/recorder.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "phonedesk/database/repository/booking"
	"phonedesk/models"
	"phonedesk/services/catalog"
	"phonedesk/services/validator"
)

// Writer persists finalized transactions.
type Writer interface {
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	CreateOrder(ctx context.Context, order *models.Order) error
}

// Record is what a finished call produced. Exactly one of the pointers is set.
type Record struct {
	Appointment *models.Appointment
	Order       *models.Order
}

// ID returns the stored transaction id.
func (r Record) ID() string {
	switch {
	case r.Appointment != nil:
		return r.Appointment.ID
	case r.Order != nil:
		return r.Order.ID
	}
	return ""
}

// Recorder turns a confirmed session into a stored appointment or order.
type Recorder struct {
	writer Writer
	now    func() time.Time
}

func NewRecorder(w Writer) *Recorder {
	return &Recorder{writer: w, now: time.Now}
}

// Finalize writes the transaction for s. A call that was already recorded
// counts as success, so a repeated turn never double-books.
func (r *Recorder) Finalize(ctx context.Context, s *models.CallSession, snap *catalog.Snapshot) (Record, error) {
	switch s.Flow {
	case models.FlowAppointment:
		appt, err := r.appointment(s, snap)
		if err != nil {
			return Record{}, err
		}
		if err := r.writer.CreateAppointment(ctx, appt); err != nil && !errors.Is(err, bookingRepo.ErrAlreadyRecorded) {
			return Record{}, err
		}
		return Record{Appointment: appt}, nil
	case models.FlowOrder:
		order := r.order(s, snap)
		if err := r.writer.CreateOrder(ctx, order); err != nil && !errors.Is(err, bookingRepo.ErrAlreadyRecorded) {
			return Record{}, err
		}
		return Record{Order: order}, nil
	}
	return Record{}, fmt.Errorf("finalize call %s: unknown flow %q", s.CallID, s.Flow)
}

func (r *Recorder) appointment(s *models.CallSession, snap *catalog.Snapshot) (*models.Appointment, error) {
	loc := validator.Location(snap.Business)
	start, err := time.ParseInLocation("2006-01-02 15:04", s.Slots.Date+" "+s.Slots.Time, loc)
	if err != nil {
		return nil, fmt.Errorf("finalize call %s: bad slot %s %s: %w", s.CallID, s.Slots.Date, s.Slots.Time, err)
	}
	service, ok := snap.Entry(s.Slots.ServiceID)
	if !ok {
		service, _ = snap.ResolveProduct(s.Slots.Service)
	}
	name := service.Name
	if name == "" {
		name = s.Slots.Service
	}
	return &models.Appointment{
		BusinessID:  snap.Business.ID,
		CallID:      s.CallID,
		ServiceID:   service.ID,
		ServiceName: name,
		Name:        s.Slots.Name,
		Phone:       s.Slots.Phone,
		Start:       start,
		End:         start.Add(validator.Duration(snap.Business, service)),
		Status:      models.StatusConfirmed,
		CreatedAt:   r.now().UTC(),
	}, nil
}

func (r *Recorder) order(s *models.CallSession, snap *catalog.Snapshot) *models.Order {
	return &models.Order{
		BusinessID:  snap.Business.ID,
		CallID:      s.CallID,
		Lines:       s.Slots.Items,
		Fulfillment: s.Slots.Fulfillment,
		Name:        s.Slots.Name,
		Phone:       s.Slots.Phone,
		Address:     s.Slots.Address,
		Total:       s.Slots.OrderTotal(),
		Status:      models.StatusConfirmed,
		CreatedAt:   r.now().UTC(),
	}
}
