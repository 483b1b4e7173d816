package models

import (
	"github.com/uptrace/bun"
)

// Event metadata. Seats and row prices reference events by ID only;
// the inventory core never interprets these fields.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string `bun:"id,pk" json:"id"`
	Name        string `bun:"name,notnull" json:"name"`
	Description string `bun:"description,nullzero" json:"description,omitempty"`
	Date        string `bun:"date,nullzero" json:"date,omitempty"`
	Time        string `bun:"time,nullzero" json:"time,omitempty"`
	Location    string `bun:"location,nullzero" json:"location,omitempty"`
	ImageURL    string `bun:"image_url,nullzero" json:"image_url,omitempty"`
}
