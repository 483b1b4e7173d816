package models

import (
	"time"
)

// SeatStatusChangeEvent is published to Kafka whenever a seat
// transitions state, so downstream consumers (availability caches,
// notification fanout) can react without polling the store.
type SeatStatusChangeEvent struct {
	EventID    string    `json:"event_id"`
	RowName    string    `json:"row_name"`
	SeatNumber int       `json:"seat_number"`
	Barcode    string    `json:"barcode"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewSeatStatusChangeEvent stamps the transition with the current time.
func NewSeatStatusChangeEvent(seat Seat, status string) SeatStatusChangeEvent {
	return SeatStatusChangeEvent{
		EventID:    seat.EventID,
		RowName:    seat.RowName,
		SeatNumber: seat.SeatNumber,
		Barcode:    seat.Barcode,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}
