package flow

import "fmt"

// FlowError is returned when a session cannot be driven by any flow.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
