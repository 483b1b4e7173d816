package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ms-seating/internal/models"
)

type EventDBLayer interface {
	CreateEvent(ctx context.Context, event models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, afterDate, location string) ([]models.Event, error)
	EventExists(ctx context.Context, id string) (bool, error)
}

type EventService struct {
	DB EventDBLayer
}

func NewEventService(db EventDBLayer) *EventService {
	return &EventService{DB: db}
}

func (s *EventService) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	if event.Name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("event %s not found: %w", id, err)
	}
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, afterDate, location string) ([]models.Event, error) {
	events, err := s.DB.ListEvents(ctx, afterDate, location)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}
