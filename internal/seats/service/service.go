package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/utils"
)

// SeatStatusTopic carries seat transition events for downstream consumers.
const SeatStatusTopic = "tessera.seats.status"

// purchaseRetries bounds the select-then-sell loop in Purchase. Each
// retry means another buyer won the race for the selected seat.
const purchaseRetries = 3

type DBLayer interface {
	GetSeat(ctx context.Context, eventID, rowName string, seatNumber int) (*models.Seat, error)
	GetSeatByBarcode(ctx context.Context, barcode string) (*models.Seat, error)
	SeatsByEvent(ctx context.Context, eventID string) ([]models.Seat, error)
	BulkInsertSeats(ctx context.Context, seats []models.Seat) error
	ReserveSeat(ctx context.Context, eventID, rowName string, seatNumber int, now time.Time) (bool, error)
	UnreserveSeat(ctx context.Context, eventID, rowName string, seatNumber int) (bool, error)
	SellSeat(ctx context.Context, eventID, rowName string, seatNumber int, ownerID string) (bool, error)
	FirstAvailableSeat(ctx context.Context, eventID string) (*models.Seat, error)
	PricesByEvent(ctx context.Context, eventID string) (map[string]int64, error)
	CountByStatus(ctx context.Context, eventID string) (*models.SalesSummary, error)
}

// HoldManager mirrors a reservation into an expiring external hold so
// forgotten reservations are eventually released. Optional: with no
// manager configured, reservations simply never expire.
type HoldManager interface {
	HoldSeat(ctx context.Context, eventID, rowName string, seatNumber int) error
	ReleaseHold(ctx context.Context, eventID, rowName string, seatNumber int) error
}

type KafkaPublisher interface {
	Publish(topic string, key string, value []byte) error
}

// SeatService implements the reservation state machine, the purchase
// coordinator and the availability projection on top of the store's
// conditional updates.
type SeatService struct {
	DB     DBLayer
	Holds  HoldManager
	Kafka  KafkaPublisher
	Logger *logger.Logger
}

func NewSeatService(db DBLayer, holds HoldManager, kafka KafkaPublisher, log *logger.Logger) *SeatService {
	return &SeatService{DB: db, Holds: holds, Kafka: kafka, Logger: log}
}

// BulkCreateSeats seeds one seat per row x seat-number combination,
// each with a fresh barcode. Idempotent: identities that already exist
// are skipped and keep their original barcode. Returns the number of
// seats attempted.
func (s *SeatService) BulkCreateSeats(ctx context.Context, eventID string, rows []string, seatsPerRow int) (int, error) {
	if eventID == "" {
		return 0, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: at least one row is required", ErrValidation)
	}
	if seatsPerRow <= 0 {
		return 0, fmt.Errorf("%w: seats_per_row must be positive", ErrValidation)
	}

	seats := make([]models.Seat, 0, len(rows)*seatsPerRow)
	for _, row := range rows {
		if row == "" {
			return 0, fmt.Errorf("%w: row names must not be empty", ErrValidation)
		}
		for n := 1; n <= seatsPerRow; n++ {
			seats = append(seats, models.Seat{
				EventID:    eventID,
				RowName:    row,
				SeatNumber: n,
				Barcode:    utils.NewBarcode(),
				Status:     models.SeatStatusAvailable,
			})
		}
	}

	if err := s.DB.BulkInsertSeats(ctx, seats); err != nil {
		return 0, fmt.Errorf("failed to create seats: %w", err)
	}
	s.Logger.Info("SEATS", fmt.Sprintf("Seeded %d seats for event %s (%d rows x %d)", len(seats), eventID, len(rows), seatsPerRow))
	return len(seats), nil
}

// Reserve transitions an AVAILABLE seat to RESERVED.
func (s *SeatService) Reserve(ctx context.Context, eventID, rowName string, seatNumber int) error {
	if err := validateSeatRef(eventID, rowName, seatNumber); err != nil {
		return err
	}
	won, err := s.DB.ReserveSeat(ctx, eventID, rowName, seatNumber, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to reserve seat: %w", err)
	}
	if !won {
		return ErrSeatUnavailable
	}
	if s.Holds != nil {
		if err := s.Holds.HoldSeat(ctx, eventID, rowName, seatNumber); err != nil {
			s.Logger.Warn("SEATS", fmt.Sprintf("Failed to place expiring hold for %s/%s/%d: %v", eventID, rowName, seatNumber, err))
		}
	}
	s.publishStatus(ctx, eventID, rowName, seatNumber, models.SeatStatusReserved)
	return nil
}

// Unreserve returns a RESERVED seat to AVAILABLE.
func (s *SeatService) Unreserve(ctx context.Context, eventID, rowName string, seatNumber int) error {
	if err := validateSeatRef(eventID, rowName, seatNumber); err != nil {
		return err
	}
	won, err := s.DB.UnreserveSeat(ctx, eventID, rowName, seatNumber)
	if err != nil {
		return fmt.Errorf("failed to unreserve seat: %w", err)
	}
	if !won {
		return ErrSeatUnavailable
	}
	if s.Holds != nil {
		if err := s.Holds.ReleaseHold(ctx, eventID, rowName, seatNumber); err != nil {
			s.Logger.Warn("SEATS", fmt.Sprintf("Failed to release hold for %s/%s/%d: %v", eventID, rowName, seatNumber, err))
		}
	}
	s.publishStatus(ctx, eventID, rowName, seatNumber, models.SeatStatusAvailable)
	return nil
}

// Sell finalizes a seat for a buyer from either AVAILABLE or RESERVED.
func (s *SeatService) Sell(ctx context.Context, eventID, rowName string, seatNumber int, buyerID string) error {
	if err := validateSeatRef(eventID, rowName, seatNumber); err != nil {
		return err
	}
	if buyerID == "" {
		return fmt.Errorf("%w: buyer id is required", ErrValidation)
	}
	won, err := s.DB.SellSeat(ctx, eventID, rowName, seatNumber, buyerID)
	if err != nil {
		return fmt.Errorf("failed to sell seat: %w", err)
	}
	if !won {
		return ErrSeatUnavailable
	}
	if s.Holds != nil {
		if err := s.Holds.ReleaseHold(ctx, eventID, rowName, seatNumber); err != nil {
			s.Logger.Warn("SEATS", fmt.Sprintf("Failed to release hold for %s/%s/%d: %v", eventID, rowName, seatNumber, err))
		}
	}
	s.publishStatus(ctx, eventID, rowName, seatNumber, models.SeatStatusSold)
	return nil
}

// Purchase finds any AVAILABLE seat for the event and sells it to the
// buyer. The select and the sell are separate statements, so a rival
// transaction can claim the selected seat in between; when that
// happens the conditional sell affects zero rows and we re-select,
// bounded by purchaseRetries. Two callers can never be told they
// bought the same seat.
func (s *SeatService) Purchase(ctx context.Context, eventID, buyerID string) (*models.Seat, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if buyerID == "" {
		return nil, fmt.Errorf("%w: buyer id is required", ErrValidation)
	}

	for attempt := 0; attempt < purchaseRetries; attempt++ {
		seat, err := s.DB.FirstAvailableSeat(ctx, eventID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNoInventory
			}
			return nil, fmt.Errorf("failed to find available seat: %w", err)
		}

		won, err := s.DB.SellSeat(ctx, eventID, seat.RowName, seat.SeatNumber, buyerID)
		if err != nil {
			return nil, fmt.Errorf("failed to sell seat: %w", err)
		}
		if !won {
			s.Logger.Debug("PURCHASE", fmt.Sprintf("Lost race for seat %s/%s/%d, retrying", eventID, seat.RowName, seat.SeatNumber))
			continue
		}

		seat.Status = models.SeatStatusSold
		seat.OwnerID = &buyerID
		seat.ReservationTime = nil
		s.publishStatus(ctx, eventID, seat.RowName, seat.SeatNumber, models.SeatStatusSold)
		s.Logger.Info("PURCHASE", fmt.Sprintf("Sold seat %s/%s/%d to %s (barcode %s)", eventID, seat.RowName, seat.SeatNumber, buyerID, seat.Barcode))
		return seat, nil
	}
	return nil, ErrSeatUnavailable
}

// Availability projects the event's seats into a row -> number -> info
// grid, annotated with the row price where one is assigned. Pure read;
// the snapshot may be stale by the time the caller acts on it, which
// is why every transition re-validates at write time.
func (s *SeatService) Availability(ctx context.Context, eventID string) (models.Availability, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	seats, err := s.DB.SeatsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	prices, err := s.DB.PricesByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load row prices: %w", err)
	}

	grid := make(models.Availability)
	for _, seat := range seats {
		row, ok := grid[seat.RowName]
		if !ok {
			row = make(map[int]models.SeatInfo)
			grid[seat.RowName] = row
		}
		row[seat.SeatNumber] = models.SeatInfo{
			Status:     seat.Status,
			PriceCents: prices[seat.RowName],
		}
	}
	return grid, nil
}

// SalesSummary reports seat counts by status for an event.
func (s *SeatService) SalesSummary(ctx context.Context, eventID string) (*models.SalesSummary, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	summary, err := s.DB.CountByStatus(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count seats: %w", err)
	}
	return summary, nil
}

// TicketByBarcode resolves a sold seat by its printed barcode.
func (s *SeatService) TicketByBarcode(ctx context.Context, barcode string) (*models.Seat, error) {
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode is required", ErrValidation)
	}
	seat, err := s.DB.GetSeatByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatUnavailable
		}
		return nil, fmt.Errorf("failed to look up barcode: %w", err)
	}
	if seat.Status != models.SeatStatusSold {
		return nil, ErrSeatUnavailable
	}
	return seat, nil
}

func (s *SeatService) publishStatus(ctx context.Context, eventID, rowName string, seatNumber int, status string) {
	if s.Kafka == nil {
		return
	}
	evt := models.SeatStatusChangeEvent{
		EventID:    eventID,
		RowName:    rowName,
		SeatNumber: seatNumber,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
	value, err := json.Marshal(evt)
	if err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to marshal seat status event: %v", err))
		return
	}
	key := fmt.Sprintf("%s:%s:%d", eventID, rowName, seatNumber)
	if err := s.Kafka.Publish(SeatStatusTopic, key, value); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish seat status event: %v", err))
	}
}

func validateSeatRef(eventID, rowName string, seatNumber int) error {
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if rowName == "" {
		return fmt.Errorf("%w: row name is required", ErrValidation)
	}
	if seatNumber <= 0 {
		return fmt.Errorf("%w: seat number must be positive", ErrValidation)
	}
	return nil
}
