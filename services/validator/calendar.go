package validator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"phonedesk/models"
	"phonedesk/services/catalog"
)

const (
	defaultStepMinutes     = 30
	defaultDurationMinutes = 30
	maxAlternatives        = 2
)

// AppointmentLister reads existing bookings.
type AppointmentLister interface {
	ListAppointments(ctx context.Context, businessID string, from, to time.Time) ([]models.Appointment, error)
}

// Calendar checks opening hours, the clock and existing bookings.
type Calendar struct {
	bookings AppointmentLister
	now      func() time.Time
}

// NewCalendar returns a calendar validator over a booking source.
func NewCalendar(bookings AppointmentLister) *Calendar {
	return &Calendar{bookings: bookings, now: time.Now}
}

// Location returns the business timezone, UTC when unset or unknown.
func Location(b models.Business) *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Duration returns how long a service occupies the calendar.
func Duration(b models.Business, service models.CatalogEntry) time.Duration {
	switch {
	case service.DurationMinutes > 0:
		return time.Duration(service.DurationMinutes) * time.Minute
	case b.DefaultDurationMinutes > 0:
		return time.Duration(b.DefaultDurationMinutes) * time.Minute
	}
	return defaultDurationMinutes * time.Minute
}

func clockOn(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// Check decides whether [date hhmm, +duration) can be booked.
func (c *Calendar) Check(ctx context.Context, b models.Business, date, hhmm string, duration time.Duration) (models.AvailabilityResult, error) {
	loc := Location(b)
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return models.AvailabilityResult{Reason: models.ReasonInvalid, Message: "invalid date"}, nil
	}
	start, err := clockOn(day, hhmm)
	if err != nil {
		return models.AvailabilityResult{Reason: models.ReasonInvalid, Message: "invalid time"}, nil
	}
	end := start.Add(duration)

	row, ok := b.HoursFor(int(day.Weekday()))
	if !ok || row.Closed {
		return models.AvailabilityResult{Reason: models.ReasonClosed, Message: "closed on " + day.Weekday().String()}, nil
	}
	open, err1 := clockOn(day, row.Open)
	closing, err2 := clockOn(day, row.Close)
	if err1 != nil || err2 != nil {
		return models.AvailabilityResult{}, fmt.Errorf("bad opening hours for %s on %s: %q-%q", b.ID, day.Weekday(), row.Open, row.Close)
	}
	hours := &models.HoursWindow{Open: row.Open, Close: row.Close}

	booked, err := c.bookings.ListAppointments(ctx, b.ID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return models.AvailabilityResult{}, fmt.Errorf("list appointments: %w", err)
	}

	now := c.now().In(loc)
	step := time.Duration(b.SlotStepMinutes) * time.Minute
	if step <= 0 {
		step = defaultStepMinutes * time.Minute
	}
	alternatives := func() []string {
		return nearestFree(start, open, closing, duration, step, now, booked)
	}

	switch {
	case start.Before(open) || end.After(closing):
		return models.AvailabilityResult{
			Reason:       models.ReasonOutsideHours,
			Message:      fmt.Sprintf("open from %s to %s", row.Open, row.Close),
			Hours:        hours,
			Alternatives: alternatives(),
		}, nil
	case start.Before(now):
		return models.AvailabilityResult{
			Reason:       models.ReasonInPast,
			Message:      "that time has already passed",
			Hours:        hours,
			Alternatives: alternatives(),
		}, nil
	case conflicts(booked, start, end):
		return models.AvailabilityResult{
			Reason:       models.ReasonConflict,
			Message:      "that time is already booked",
			Hours:        hours,
			Alternatives: alternatives(),
		}, nil
	}
	return models.AvailabilityResult{Available: true, Hours: hours}, nil
}

func conflicts(booked []models.Appointment, start, end time.Time) bool {
	for _, a := range booked {
		if a.Status != models.StatusCancelled && a.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// nearestFree scans the slot grid of the day and returns the free starts
// closest to the requested one; ties go to the earlier slot.
func nearestFree(requested, open, closing time.Time, duration, step time.Duration, now time.Time, booked []models.Appointment) []string {
	var free []time.Time
	for s := open; !s.Add(duration).After(closing); s = s.Add(step) {
		if s.Equal(requested) || s.Before(now) || conflicts(booked, s, s.Add(duration)) {
			continue
		}
		free = append(free, s)
	}
	dist := func(t time.Time) time.Duration {
		d := t.Sub(requested)
		if d < 0 {
			return -d
		}
		return d
	}
	sort.SliceStable(free, func(i, j int) bool {
		di, dj := dist(free[i]), dist(free[j])
		if di != dj {
			return di < dj
		}
		return free[i].Before(free[j])
	})
	if len(free) > maxAlternatives {
		free = free[:maxAlternatives]
	}
	out := make([]string, 0, len(free))
	for _, s := range free {
		out = append(out, s.Format("15:04"))
	}
	return out
}

// Validate checks the requested service, day and time of an appointment session.
func (c *Calendar) Validate(ctx context.Context, s *models.CallSession, snap *catalog.Snapshot) (Result, error) {
	service, ok := snap.Entry(s.Slots.ServiceID)
	if !ok {
		service, _ = snap.ResolveProduct(s.Slots.Service)
	}
	if service.ID == "" || !service.Available {
		return Result{Field: "service", Code: models.RespServiceNotFound, Problems: []string{s.Slots.Service}}, nil
	}

	avail, err := c.Check(ctx, snap.Business, s.Slots.Date, s.Slots.Time, Duration(snap.Business, service))
	if err != nil {
		return Result{}, err
	}
	if avail.Available {
		return Result{OK: true, Availability: &avail}, nil
	}

	r := Result{Field: "time", Availability: &avail}
	switch avail.Reason {
	case models.ReasonClosed:
		r.Field, r.Code = "date", models.RespClosed
	case models.ReasonOutsideHours:
		r.Code = models.RespOutsideHours
	case models.ReasonInPast:
		r.Code = models.RespInPast
	case models.ReasonInvalid:
		r.Code = models.RespAskTime
	default:
		r.Code = models.RespUnavailable
	}
	return r, nil
}
