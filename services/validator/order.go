package validator

import (
	"context"
	"math"

	"phonedesk/models"
	"phonedesk/services/catalog"
)

// Catalog re-prices order lines from the snapshot and flags what cannot be sold.
type Catalog struct{}

// NewCatalog returns the order validator.
func NewCatalog() *Catalog { return &Catalog{} }

// Reprice returns the lines that can be sold at current prices plus the
// names of unknown and unavailable ones. Nothing is dropped silently.
func (Catalog) Reprice(lines []models.OrderLine, snap *catalog.Snapshot) (ok []models.OrderLine, unknown, unavailable []string) {
	for _, l := range lines {
		entry, found := snap.Entry(l.ItemID)
		if !found {
			if e, kind := snap.ResolveProduct(l.Name); kind != catalog.MatchNone {
				entry, found = e, true
			}
		}
		switch {
		case !found:
			unknown = append(unknown, l.Name)
			continue
		case !entry.Available:
			unavailable = append(unavailable, entry.Name)
			continue
		}

		l.ItemID, l.Name, l.UnitPrice = entry.ID, entry.Name, entry.Price
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		mods := make([]models.Modifier, 0, len(l.Modifiers))
		for _, m := range l.Modifiers {
			if m.Without {
				m.Price = 0
			} else if me, ok := snap.Entry(m.ID); ok {
				if !me.Available {
					unavailable = append(unavailable, me.Name)
					continue
				}
				m.Name, m.Price = me.Name, me.Price
			}
			mods = append(mods, m)
		}
		if len(mods) == 0 {
			mods = nil
		}
		l.Modifiers = mods
		ok = append(ok, l)
	}
	return ok, unknown, unavailable
}

// Validate checks every line and the fulfillment choice.
func (c Catalog) Validate(ctx context.Context, s *models.CallSession, snap *catalog.Snapshot) (Result, error) {
	lines, unknown, unavailable := c.Reprice(s.Slots.Items, snap)
	total := 0.0
	for _, l := range lines {
		total += l.Total()
	}
	r := Result{Lines: lines, Total: math.Round(total*100) / 100}

	switch {
	case len(unknown) > 0:
		r.Field, r.Code, r.Problems = "items", models.RespItemNotFound, unknown
	case len(unavailable) > 0:
		r.Field, r.Code, r.Problems = "items", models.RespItemUnavailable, unavailable
	case len(lines) == 0:
		r.Field, r.Code = "items", models.RespAskItems
	case s.Slots.Fulfillment == models.FulfillmentDelivery && !snap.Business.DeliveryAvailable:
		r.Field, r.Code = "fulfillment", models.RespNoDelivery
	default:
		r.OK = true
	}
	return r, nil
}
