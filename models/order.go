package models

import (
	"math"
	"time"
)

// Modifier is an option attached to an order line (a sauce, "without onions").
type Modifier struct {
	ID      string  `bson:"id" json:"id"`
	Name    string  `bson:"name" json:"name"`
	Price   float64 `bson:"price" json:"price"`
	Without bool    `bson:"without,omitempty" json:"without,omitempty"` // "without X" always costs nothing
}

// OrderLine is one catalog item with its quantity and modifiers.
type OrderLine struct {
	ItemID    string     `bson:"item_id" json:"itemId"`
	Name      string     `bson:"name" json:"name"`
	Quantity  int        `bson:"quantity" json:"quantity"`
	UnitPrice float64    `bson:"unit_price" json:"unitPrice"`
	Modifiers []Modifier `bson:"modifiers,omitempty" json:"modifiers,omitempty"`
}

// UnitTotal is the price of one unit including its modifiers.
func (l OrderLine) UnitTotal() float64 {
	p := l.UnitPrice
	for _, m := range l.Modifiers {
		if !m.Without {
			p += m.Price
		}
	}
	return roundMoney(p)
}

// Total is UnitTotal times quantity.
func (l OrderLine) Total() float64 {
	return roundMoney(l.UnitTotal() * float64(l.Quantity))
}

// Order is a finalized order persisted at the end of a call.
type Order struct {
	ID          string      `bson:"id" json:"id"`
	BusinessID  string      `bson:"business_id" json:"businessId"`
	CallID      string      `bson:"call_id" json:"callId"`
	Lines       []OrderLine `bson:"lines" json:"lines"`
	Fulfillment string      `bson:"fulfillment" json:"fulfillment"`
	Name        string      `bson:"name" json:"name"`
	Phone       string      `bson:"phone,omitempty" json:"phone,omitempty"`
	Address     string      `bson:"address,omitempty" json:"address,omitempty"`
	Total       float64     `bson:"total" json:"total"`
	Status      string      `bson:"status" json:"status"`
	CreatedAt   time.Time   `bson:"created_at" json:"createdAt"`
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
