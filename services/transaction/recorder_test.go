package transaction

import (
	"context"
	"fmt"
	"testing"
	"time"

	bookingRepo "phonedesk/database/repository/booking"
	"phonedesk/models"
	"phonedesk/services/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	appts  []*models.Appointment
	orders []*models.Order
	err    error
}

func (f *fakeWriter) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if f.err != nil {
		return f.err
	}
	a.ID = "appt-1"
	f.appts = append(f.appts, a)
	return nil
}

func (f *fakeWriter) CreateOrder(ctx context.Context, o *models.Order) error {
	if f.err != nil {
		return f.err
	}
	o.ID = "order-1"
	f.orders = append(f.orders, o)
	return nil
}

var now = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func salon() *catalog.Snapshot {
	b := models.Business{ID: "salon", Timezone: "Europe/Amsterdam", DefaultDurationMinutes: 20}
	return catalog.NewSnapshot(b, []models.CatalogEntry{
		{ID: "knip", Name: "Knipbeurt", DurationMinutes: 45, Available: true},
	}, nil, now)
}

func TestFinalizeAppointment(t *testing.T) {
	w := &fakeWriter{}
	r := NewRecorder(w)
	r.now = func() time.Time { return now }
	s := &models.CallSession{CallID: "CA1", Flow: models.FlowAppointment, Slots: models.Slots{
		Service: "Knipbeurt", ServiceID: "knip", Date: "2026-03-05", Time: "14:30", Name: "Jan", Phone: "+31612345678",
	}}

	rec, err := r.Finalize(context.Background(), s, salon())
	require.NoError(t, err)
	assert.Equal(t, "appt-1", rec.ID())
	require.Len(t, w.appts, 1)

	a := w.appts[0]
	loc, _ := time.LoadLocation("Europe/Amsterdam")
	assert.True(t, a.Start.Equal(time.Date(2026, 3, 5, 14, 30, 0, 0, loc)))
	assert.Equal(t, 45*time.Minute, a.End.Sub(a.Start))
	assert.Equal(t, "CA1", a.CallID)
	assert.Equal(t, "Knipbeurt", a.ServiceName)
	assert.Equal(t, models.StatusConfirmed, a.Status)
}

func TestFinalizeOrder(t *testing.T) {
	w := &fakeWriter{}
	s := &models.CallSession{CallID: "CA2", Flow: models.FlowOrder, Slots: models.Slots{
		Items:       []models.OrderLine{{ItemID: "cola", Name: "Cola", Quantity: 2, UnitPrice: 2.25}},
		Fulfillment: models.FulfillmentDelivery,
		Name:        "Jan",
		Address:     "Dorpsweg 14",
	}}
	rec, err := NewRecorder(w).Finalize(context.Background(), s, salon())
	require.NoError(t, err)
	require.NotNil(t, rec.Order)
	assert.Equal(t, "order-1", rec.ID())
	assert.InDelta(t, 4.50, w.orders[0].Total, 1e-9)
	assert.Equal(t, "Dorpsweg 14", w.orders[0].Address)
}

func TestFinalizeErrors(t *testing.T) {
	s := &models.CallSession{CallID: "CA3", Flow: models.FlowAppointment, Slots: models.Slots{
		ServiceID: "knip", Date: "2026-03-05", Time: "14:30", Name: "Jan",
	}}

	_, err := NewRecorder(&fakeWriter{err: fmt.Errorf("tx: %w", bookingRepo.ErrSlotTaken)}).Finalize(context.Background(), s, salon())
	assert.ErrorIs(t, err, bookingRepo.ErrSlotTaken)

	_, err = NewRecorder(&fakeWriter{err: bookingRepo.ErrAlreadyRecorded}).Finalize(context.Background(), s, salon())
	assert.NoError(t, err, "a call recorded earlier is not an error")

	s.Flow = "taxi"
	_, err = NewRecorder(&fakeWriter{}).Finalize(context.Background(), s, salon())
	assert.Error(t, err)
}
