package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"phonedesk/models"
	"phonedesk/services/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookings struct {
	appts []models.Appointment
	err   error
}

func (f *fakeBookings) ListAppointments(ctx context.Context, businessID string, from, to time.Time) ([]models.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Appointment
	for _, a := range f.appts {
		if a.BusinessID == businessID && a.Overlaps(from, to) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Wednesday 4 March 2026, 10:00 UTC.
var now = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func salon() models.Business {
	b := models.Business{ID: "salon", Flow: models.FlowAppointment, Timezone: "UTC", SlotStepMinutes: 30}
	for wd := 1; wd <= 6; wd++ {
		b.OpeningHours = append(b.OpeningHours, models.OpeningHours{Weekday: wd, Open: "09:00", Close: "18:00"})
	}
	b.OpeningHours = append(b.OpeningHours, models.OpeningHours{Weekday: 0, Closed: true})
	return b
}

func appt(start string, minutes int, status string) models.Appointment {
	s, _ := time.Parse("2006-01-02 15:04", start)
	return models.Appointment{
		BusinessID: "salon",
		Start:      s,
		End:        s.Add(time.Duration(minutes) * time.Minute),
		Status:     status,
	}
}

func newCalendar(appts ...models.Appointment) *Calendar {
	c := NewCalendar(&fakeBookings{appts: appts})
	c.now = func() time.Time { return now }
	return c
}

func TestCheckAvailable(t *testing.T) {
	c := newCalendar(appt("2026-03-05 14:00", 30, models.StatusCancelled))
	res, err := c.Check(context.Background(), salon(), "2026-03-05", "14:00", 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Available, "cancelled bookings do not block")
	assert.Equal(t, &models.HoursWindow{Open: "09:00", Close: "18:00"}, res.Hours)
}

func TestCheckConflictReturnsTwoNearest(t *testing.T) {
	c := newCalendar(appt("2026-03-05 14:00", 30, models.StatusConfirmed))
	res, err := c.Check(context.Background(), salon(), "2026-03-05", "14:00", 30*time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, models.ReasonConflict, res.Reason)
	assert.Equal(t, []string{"13:30", "14:30"}, res.Alternatives)
}

func TestAlternativesRankedByDistance(t *testing.T) {
	c := newCalendar(
		appt("2026-03-05 13:30", 60, models.StatusConfirmed),
		appt("2026-03-05 14:30", 30, models.StatusConfirmed),
	)
	res, err := c.Check(context.Background(), salon(), "2026-03-05", "14:00", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonConflict, res.Reason)
	// 13:00 and 15:00 are both an hour away; the earlier wins
	assert.Equal(t, []string{"13:00", "15:00"}, res.Alternatives)
}

func TestAlternativesSkipPastSlots(t *testing.T) {
	c := newCalendar(appt("2026-03-04 10:30", 30, models.StatusConfirmed))
	res, err := c.Check(context.Background(), salon(), "2026-03-04", "10:30", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonConflict, res.Reason)
	assert.Equal(t, []string{"10:00", "11:00"}, res.Alternatives)

	c.now = func() time.Time { return now.Add(5 * time.Minute) }
	res, err = c.Check(context.Background(), salon(), "2026-03-04", "10:30", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00", "11:30"}, res.Alternatives)
}

func TestCheckRejections(t *testing.T) {
	c := newCalendar()
	cases := []struct {
		name, date, at string
		duration       time.Duration
		reason         string
	}{
		{"sunday closed", "2026-03-08", "12:00", 30 * time.Minute, models.ReasonClosed},
		{"before opening", "2026-03-05", "08:00", 30 * time.Minute, models.ReasonOutsideHours},
		{"runs past closing", "2026-03-05", "17:45", 30 * time.Minute, models.ReasonOutsideHours},
		{"earlier today", "2026-03-04", "09:30", 30 * time.Minute, models.ReasonInPast},
		{"bad time", "2026-03-05", "25:00", 30 * time.Minute, models.ReasonInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := c.Check(context.Background(), salon(), tc.date, tc.at, tc.duration)
			require.NoError(t, err)
			assert.False(t, res.Available)
			assert.Equal(t, tc.reason, res.Reason)
		})
	}

	res, _ := c.Check(context.Background(), salon(), "2026-03-05", "17:30", 30*time.Minute)
	assert.True(t, res.Available, "a slot ending exactly at closing fits")
}

func TestCheckPropagatesRepositoryErrors(t *testing.T) {
	c := NewCalendar(&fakeBookings{err: errors.New("mongo down")})
	c.now = func() time.Time { return now }
	_, err := c.Check(context.Background(), salon(), "2026-03-05", "14:00", 30*time.Minute)
	assert.Error(t, err)
}

func salonSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot(salon(), []models.CatalogEntry{
		{ID: "knip", Name: "Knipbeurt", DurationMinutes: 30, Available: true},
		{ID: "kleur", Name: "Kleuren", DurationMinutes: 90, Available: false},
	}, nil, now)
}

func TestCalendarValidate(t *testing.T) {
	c := newCalendar(appt("2026-03-05 14:00", 30, models.StatusConfirmed))
	snap := salonSnapshot()
	s := &models.CallSession{Slots: models.Slots{ServiceID: "knip", Service: "Knipbeurt", Date: "2026-03-05", Time: "15:00", Name: "Jan"}}

	r, err := c.Validate(context.Background(), s, snap)
	require.NoError(t, err)
	assert.True(t, r.OK)

	s.Slots.Time = "14:00"
	r, err = c.Validate(context.Background(), s, snap)
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, "time", r.Field)
	assert.Equal(t, models.RespUnavailable, r.Code)
	assert.Equal(t, []string{"13:30", "14:30"}, r.Availability.Alternatives)

	s.Slots.Date = "2026-03-08"
	r, _ = c.Validate(context.Background(), s, snap)
	assert.Equal(t, "date", r.Field)
	assert.Equal(t, models.RespClosed, r.Code)

	s.Slots.ServiceID, s.Slots.Service = "kleur", "Kleuren"
	r, _ = c.Validate(context.Background(), s, snap)
	assert.Equal(t, "service", r.Field)
	assert.Equal(t, models.RespServiceNotFound, r.Code)
}

func TestDuration(t *testing.T) {
	b := salon()
	assert.Equal(t, 45*time.Minute, Duration(b, models.CatalogEntry{DurationMinutes: 45}))
	assert.Equal(t, 30*time.Minute, Duration(b, models.CatalogEntry{}))
	b.DefaultDurationMinutes = 20
	assert.Equal(t, 20*time.Minute, Duration(b, models.CatalogEntry{}))
}

func snackbarSnapshot(delivery bool) *catalog.Snapshot {
	b := models.Business{ID: "snack", Flow: models.FlowOrder, DeliveryAvailable: delivery}
	return catalog.NewSnapshot(b, []models.CatalogEntry{
		{ID: "grote-friet", Name: "Grote friet", Price: 3.50, Available: true},
		{ID: "kroket", Name: "Kroket", Price: 2.10, Available: false},
		{ID: "mayo", Name: "Mayonaise", Price: 0.50, IsModifier: true, Available: true},
	}, nil, now)
}

func TestCatalogValidateReprices(t *testing.T) {
	s := &models.CallSession{Slots: models.Slots{
		Fulfillment: models.FulfillmentPickup,
		Items: []models.OrderLine{{
			ItemID: "grote-friet", Name: "Grote friet", Quantity: 2, UnitPrice: 9.99,
			Modifiers: []models.Modifier{{ID: "mayo", Name: "Mayonaise", Price: 3}, {Name: "zout", Without: true, Price: 1}},
		}},
	}}
	r, err := NewCatalog().Validate(context.Background(), s, snackbarSnapshot(true))
	require.NoError(t, err)
	assert.True(t, r.OK)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, 3.50, r.Lines[0].UnitPrice)
	assert.Equal(t, 0.50, r.Lines[0].Modifiers[0].Price)
	assert.Zero(t, r.Lines[0].Modifiers[1].Price)
	assert.InDelta(t, 8.00, r.Total, 1e-9)
}

func TestCatalogValidateFlagsProblems(t *testing.T) {
	c := NewCatalog()
	s := &models.CallSession{Slots: models.Slots{Items: []models.OrderLine{
		{ItemID: "grote-friet", Name: "Grote friet", Quantity: 1},
		{ItemID: "kroket", Name: "Kroket", Quantity: 1},
	}}}
	r, err := c.Validate(context.Background(), s, snackbarSnapshot(true))
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, models.RespItemUnavailable, r.Code)
	assert.Equal(t, []string{"Kroket"}, r.Problems)
	assert.Len(t, r.Lines, 1, "sellable lines are kept")

	s.Slots.Items = append(s.Slots.Items, models.OrderLine{Name: "pizza", Quantity: 1})
	r, _ = c.Validate(context.Background(), s, snackbarSnapshot(true))
	assert.Equal(t, models.RespItemNotFound, r.Code)
	assert.Equal(t, []string{"pizza"}, r.Problems)

	s.Slots.Items = s.Slots.Items[:1]
	s.Slots.Fulfillment = models.FulfillmentDelivery
	r, _ = c.Validate(context.Background(), s, snackbarSnapshot(false))
	assert.Equal(t, "fulfillment", r.Field)
	assert.Equal(t, models.RespNoDelivery, r.Code)
}
