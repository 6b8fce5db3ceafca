package models

// ResponseCode selects a reply template. Codes, not free text, leave the state machine.
type ResponseCode string

const (
	RespGreeting           ResponseCode = "greeting"
	RespAskService         ResponseCode = "ask_service"
	RespAskDate            ResponseCode = "ask_date"
	RespAskTime            ResponseCode = "ask_time"
	RespAskName            ResponseCode = "ask_name"
	RespAskItems           ResponseCode = "ask_items"
	RespAskFulfillment     ResponseCode = "ask_fulfillment"
	RespAskAddress         ResponseCode = "ask_address"
	RespAnythingElse       ResponseCode = "anything_else"
	RespAskMoreItems       ResponseCode = "ask_more_items"
	RespItemNotFound       ResponseCode = "item_not_found"
	RespItemUnavailable    ResponseCode = "item_unavailable"
	RespServiceNotFound    ResponseCode = "service_not_found"
	RespNoDelivery         ResponseCode = "no_delivery"
	RespUnavailable        ResponseCode = "unavailable"
	RespClosed             ResponseCode = "closed"
	RespOutsideHours       ResponseCode = "outside_hours"
	RespInPast             ResponseCode = "in_past"
	RespConfirmAppointment ResponseCode = "confirm_appointment"
	RespConfirmOrder       ResponseCode = "confirm_order"
	RespConfirmUnclear     ResponseCode = "confirm_unclear"
	RespBooked             ResponseCode = "booked"
	RespOrderPlaced        ResponseCode = "order_placed"
	RespBookingFailed      ResponseCode = "booking_failed"
	RespEscalate           ResponseCode = "escalate"
	RespEscalateCancel     ResponseCode = "escalate_cancel"
	RespAlreadyCompleted   ResponseCode = "already_completed"
	RespError              ResponseCode = "error"
)

// Response is the symbolic instruction the response generator renders.
type Response struct {
	Code         ResponseCode `json:"code"`
	Retry        bool         `json:"retry,omitempty"` // re-asking after a failed attempt
	Alternatives []string     `json:"alternatives,omitempty"`
	Hours        *HoursWindow `json:"hours,omitempty"`
	Items        []string     `json:"items,omitempty"`    // names the caller mentioned that need attention
	Rejected     string       `json:"rejected,omitempty"` // the slot value a check refused; the slot itself is cleared
}
