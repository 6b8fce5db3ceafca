package models

// HoursWindow is the open/close window of a day.
type HoursWindow struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Availability reasons.
const (
	ReasonClosed       = "closed"
	ReasonOutsideHours = "outside_hours"
	ReasonInPast       = "in_past"
	ReasonConflict     = "conflict"
	ReasonInvalid      = "invalid"
)

// AvailabilityResult is the outcome of a calendar check.
type AvailabilityResult struct {
	Available    bool         `json:"available"`
	Reason       string       `json:"reason,omitempty"`
	Message      string       `json:"message,omitempty"`
	Alternatives []string     `json:"alternatives,omitempty"` // HH:mm, closest first
	Hours        *HoursWindow `json:"hours,omitempty"`
}
