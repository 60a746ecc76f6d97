package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dkp-tracker/models"
	"dkp-tracker/store"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// EventInput carries the writable event fields.
type EventInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DKPReward   int        `json:"dkp_reward"`
	EventTime   *time.Time `json:"event_time"`
}

// EventService manages the guild's event catalogue.
type EventService struct {
	Store store.Store
}

func NewEventService(st store.Store) *EventService {
	return &EventService{Store: st}
}

func (s *EventService) Create(ctx context.Context, in EventInput, createdBy string) (*models.Event, error) {
	if err := validateEvent(in); err != nil {
		return nil, err
	}

	event := &models.Event{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		DKPReward:   in.DKPReward,
		EventTime:   in.EventTime,
		CreatedBy:   createdBy,
	}
	var err error
	event.Slug, err = s.freeSlug(ctx, event.Name, event.ID)
	if err != nil {
		return nil, err
	}

	if err := s.Store.Events().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("event create failed: %w", err)
	}
	return event, nil
}

// Get resolves an event by id, falling back to slug so the web client can
// use friendly URLs like /events/raid-night.
func (s *EventService) Get(ctx context.Context, idOrSlug string) (*models.Event, error) {
	event, err := s.Store.Events().GetByID(ctx, idOrSlug)
	if err == store.ErrNotFound {
		event, err = s.Store.Events().GetBySlug(ctx, idOrSlug)
	}
	if err == store.ErrNotFound {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	event.AttendeeCount, err = s.Store.Attendances().CountByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	return s.Store.Events().List(ctx)
}

func (s *EventService) Update(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	if err := validateEvent(in); err != nil {
		return nil, err
	}

	event, err := s.Store.Events().GetByID(ctx, id)
	if err == store.ErrNotFound {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name != event.Name {
		event.Slug, err = s.freeSlug(ctx, name, event.ID)
		if err != nil {
			return nil, err
		}
	}
	event.Name = name
	event.Description = in.Description
	event.DKPReward = in.DKPReward
	event.EventTime = in.EventTime

	if err := s.Store.Events().Update(ctx, event); err != nil {
		return nil, fmt.Errorf("event update failed: %w", err)
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	err := s.Store.Events().Delete(ctx, id)
	if err == store.ErrNotFound {
		return ErrEventNotFound
	}
	return err
}

// freeSlug derives a slug from name, suffixing a short uuid fragment when
// another event already owns the base form.
func (s *EventService) freeSlug(ctx context.Context, name, eventID string) (string, error) {
	base := slug.Make(name)
	existing, err := s.Store.Events().GetBySlug(ctx, base)
	if err == store.ErrNotFound {
		return base, nil
	}
	if err != nil {
		return "", err
	}
	if existing.ID == eventID {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func validateEvent(in EventInput) error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if in.DKPReward < 0 {
		return &ValidationError{Fields: []string{"dkp_reward"}}
	}
	return nil
}
