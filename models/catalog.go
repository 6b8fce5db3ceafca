package models

// CatalogEntry is a sellable item, an item option (modifier) or a bookable service.
type CatalogEntry struct {
	ID              string   `bson:"id" json:"id"`
	BusinessID      string   `bson:"business_id" json:"businessId"`
	Name            string   `bson:"name" json:"name"`
	Price           float64  `bson:"price" json:"price"`
	Category        string   `bson:"category" json:"category"`
	IsModifier      bool     `bson:"is_modifier" json:"isModifier"`
	Available       bool     `bson:"available" json:"available"`
	Synonyms        []string `bson:"synonyms,omitempty" json:"synonyms,omitempty"`
	DurationMinutes int      `bson:"duration_minutes,omitempty" json:"durationMinutes,omitempty"` // services only
}

// OpeningHours is one weekday row of the business calendar.
type OpeningHours struct {
	Weekday int    `bson:"weekday" json:"weekday"` // time.Weekday, 0 = Sunday
	Open    string `bson:"open" json:"open"`       // HH:mm
	Close   string `bson:"close" json:"close"`     // HH:mm
	Closed  bool   `bson:"closed" json:"closed"`
}

// Business is the tenant a call is answered for.
type Business struct {
	ID                     string         `bson:"id" json:"id"`
	Name                   string         `bson:"name" json:"name"`
	Flow                   FlowKind       `bson:"flow" json:"flow"`
	PhoneNumber            string         `bson:"phone_number" json:"phoneNumber"`
	Locale                 string         `bson:"locale" json:"locale"`
	Timezone               string         `bson:"timezone" json:"timezone"`
	OpeningHours           []OpeningHours `bson:"opening_hours" json:"openingHours"`
	SlotStepMinutes        int            `bson:"slot_step_minutes,omitempty" json:"slotStepMinutes,omitempty"`
	DefaultDurationMinutes int            `bson:"default_duration_minutes,omitempty" json:"defaultDurationMinutes,omitempty"`
	DeliveryAvailable      bool           `bson:"delivery_available" json:"deliveryAvailable"`
	HandoffNumber          string         `bson:"handoff_number,omitempty" json:"handoffNumber,omitempty"`
	FCMToken               string         `bson:"fcm_token,omitempty" json:"-"`
}

// HoursFor returns the opening-hours row for a weekday.
func (b Business) HoursFor(weekday int) (OpeningHours, bool) {
	for _, h := range b.OpeningHours {
		if h.Weekday == weekday {
			return h, true
		}
	}
	return OpeningHours{}, false
}
