package models

import (
	"github.com/uptrace/bun"
)

// RowPrice assigns a price to every seat in a row of an event.
// Prices are stored in minor currency units (cents) so that money
// arithmetic never touches floating point.
type RowPrice struct {
	bun.BaseModel `bun:"table:row_prices"`

	EventID    string `bun:"event_id,pk" json:"event_id"`
	RowName    string `bun:"row_name,pk" json:"row_name"`
	PriceCents int64  `bun:"price_cents,notnull" json:"price_cents"`
}
