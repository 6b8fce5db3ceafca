package models

// Intent is the coarse meaning of one utterance.
type Intent string

const (
	IntentYes        Intent = "yes"
	IntentNo         Intent = "no"
	IntentCancel     Intent = "cancel"
	IntentReschedule Intent = "reschedule"
	IntentDone       Intent = "done" // "that's all"
	IntentProvide    Intent = "provide"
	IntentUnclear    Intent = "unclear"
)

// EntityKind tags a parsed entity.
type EntityKind string

const (
	EntityItem        EntityKind = "item"
	EntityService     EntityKind = "service"
	EntityDate        EntityKind = "date"
	EntityTime        EntityKind = "time"
	EntityName        EntityKind = "name"
	EntityYesNo       EntityKind = "yesno"
	EntityPhone       EntityKind = "phone"
	EntityFulfillment EntityKind = "fulfillment"
	EntityAddress     EntityKind = "address"
)

// Entity is one structured value pulled out of an utterance. Confidence is
// advisory and never drives a state transition.
type Entity struct {
	Kind       EntityKind `json:"kind"`
	Value      string     `json:"value"`
	Ref        string     `json:"ref,omitempty"` // catalog id for items and services
	Quantity   int        `json:"quantity,omitempty"`
	Price      float64    `json:"price,omitempty"`
	Modifiers  []Modifier `json:"modifiers,omitempty"`
	Confidence float64    `json:"confidence"`
}

// Extraction is the full NLU result for one utterance.
type Extraction struct {
	Intent     Intent   `json:"intent"`
	Entities   []Entity `json:"entities,omitempty"`
	Unmatched  []string `json:"unmatched,omitempty"` // order fragments that named no catalog item
	Confidence float64  `json:"confidence"`
}

// First returns the first entity of a kind.
func (e Extraction) First(kind EntityKind) (Entity, bool) {
	for _, ent := range e.Entities {
		if ent.Kind == kind {
			return ent, true
		}
	}
	return Entity{}, false
}

// All returns every entity of a kind, in utterance order.
func (e Extraction) All(kind EntityKind) []Entity {
	var out []Entity
	for _, ent := range e.Entities {
		if ent.Kind == kind {
			out = append(out, ent)
		}
	}
	return out
}
