package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Seat statuses. A seat moves AVAILABLE -> RESERVED -> AVAILABLE via
// reserve/unreserve, and reaches SOLD from either non-terminal state.
const (
	SeatStatusAvailable = "AVAILABLE"
	SeatStatusReserved  = "RESERVED"
	SeatStatusSold      = "SOLD"
)

// Seat is one unit of sellable inventory. Identity is the composite
// (event_id, row_name, seat_number); the barcode is assigned once at
// creation and never changes, so printed tickets stay valid even if
// the database is rebuilt from a dump.
//
// Invariants enforced by the conditional updates in seats/db:
//   - OwnerID is non-nil iff Status == SOLD
//   - ReservationTime is non-nil iff Status == RESERVED
type Seat struct {
	bun.BaseModel `bun:"table:seats"`

	EventID         string     `bun:"event_id,pk" json:"event_id"`
	RowName         string     `bun:"row_name,pk" json:"row_name"`
	SeatNumber      int        `bun:"seat_number,pk" json:"seat_number"`
	Barcode         string     `bun:"barcode,notnull,unique" json:"barcode"`
	Status          string     `bun:"status,notnull" json:"status"`
	ReservationTime *time.Time `bun:"reservation_time,nullzero" json:"reservation_time,omitempty"`
	OwnerID         *string    `bun:"owner_id,nullzero" json:"owner_id,omitempty"`
}

// SeatInfo is the per-seat projection returned by the availability query.
type SeatInfo struct {
	Status     string `json:"status"`
	PriceCents int64  `json:"price"`
}

// Availability maps row name -> seat number -> SeatInfo. It is a
// point-in-time snapshot; a seat shown AVAILABLE here can be claimed
// by someone else before the viewer acts on it.
type Availability map[string]map[int]SeatInfo

// SalesSummary aggregates seat counts for an event by status.
type SalesSummary struct {
	EventID   string `json:"event_id"`
	Available int    `json:"available"`
	Reserved  int    `json:"reserved"`
	Sold      int    `json:"sold"`
}
