package validator

import (
	"context"

	"phonedesk/models"
	"phonedesk/services/catalog"
)

// Result is the outcome of checking a fully collected session.
type Result struct {
	OK           bool
	Field        string // slot to clear and ask again
	Code         models.ResponseCode
	Availability *models.AvailabilityResult
	Lines        []models.OrderLine // order lines that passed, repriced
	Total        float64
	Problems     []string // names of unknown or unavailable entries
}

// Validator checks collected slots against the business's catalog or calendar.
type Validator interface {
	Validate(ctx context.Context, s *models.CallSession, snap *catalog.Snapshot) (Result, error)
}
