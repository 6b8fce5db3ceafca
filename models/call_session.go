package models

import "time"

// FlowKind selects the transaction a business takes over the phone.
type FlowKind string

const (
	FlowAppointment FlowKind = "appointment"
	FlowOrder       FlowKind = "order"
)

// Session states shared by every flow. Collection states are built with
// CollectState / MoreState from the field name.
const (
	StateGreeting = "greeting"
	StateConfirm  = "confirm"
	StateSuccess  = "success"
	StateDone     = "done"
	StateEscalate = "escalate"
	StateError    = "error"
	collectPrefix = "collect:"
	morePrefix    = "more:"
)

// CollectState returns the state that asks for the given field.
func CollectState(field string) string { return collectPrefix + field }

// MoreState returns the "anything else?" sub-state of a looping field.
func MoreState(field string) string { return morePrefix + field }

// StateField returns the field a collect or more state refers to, or "".
func StateField(state string) string {
	switch {
	case len(state) > len(collectPrefix) && state[:len(collectPrefix)] == collectPrefix:
		return state[len(collectPrefix):]
	case len(state) > len(morePrefix) && state[:len(morePrefix)] == morePrefix:
		return state[len(morePrefix):]
	}
	return ""
}

// IsMoreState reports whether state is an "anything else?" sub-state.
func IsMoreState(state string) bool {
	return len(state) > len(morePrefix) && state[:len(morePrefix)] == morePrefix
}

// IsTerminal reports whether no further turns change the session.
func IsTerminal(state string) bool {
	switch state {
	case StateSuccess, StateDone, StateEscalate, StateError:
		return true
	}
	return false
}

// CallSession is the single durable record of one phone call.
type CallSession struct {
	CallID      string         `bson:"call_id" json:"callId"`
	BusinessID  string         `bson:"business_id" json:"businessId"`
	Flow        FlowKind       `bson:"flow" json:"flow"`
	State       string         `bson:"state" json:"state"`
	Slots       Slots          `bson:"slots" json:"slots"`
	RetryCounts map[string]int `bson:"retry_counts" json:"retryCounts"`
	Version     int64          `bson:"version" json:"version"` // optimistic-concurrency token, bumped on every save
	CreatedAt   time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updatedAt"`
}

// NewCallSession returns a session in the initial state.
func NewCallSession(callID string, now time.Time) *CallSession {
	return &CallSession{
		CallID:      callID,
		State:       StateGreeting,
		RetryCounts: map[string]int{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Slots holds the fields collected so far. An empty value means "not collected".
type Slots struct {
	Service     string      `bson:"service,omitempty" json:"service,omitempty"`
	ServiceID   string      `bson:"service_id,omitempty" json:"serviceId,omitempty"`
	Date        string      `bson:"date,omitempty" json:"date,omitempty"` // YYYY-MM-DD
	Time        string      `bson:"time,omitempty" json:"time,omitempty"` // HH:mm
	Name        string      `bson:"name,omitempty" json:"name,omitempty"`
	Phone       string      `bson:"phone,omitempty" json:"phone,omitempty"`
	Address     string      `bson:"address,omitempty" json:"address,omitempty"`
	Fulfillment string      `bson:"fulfillment,omitempty" json:"fulfillment,omitempty"` // "delivery" or "pickup"
	Items       []OrderLine `bson:"items,omitempty" json:"items,omitempty"`
	ItemsDone   bool        `bson:"items_done,omitempty" json:"itemsDone,omitempty"`
}

// Fulfillment choices for orders.
const (
	FulfillmentDelivery = "delivery"
	FulfillmentPickup   = "pickup"
)

// OrderTotal sums all order lines.
func (s Slots) OrderTotal() float64 {
	total := 0.0
	for _, l := range s.Items {
		total += l.Total()
	}
	return roundMoney(total)
}
