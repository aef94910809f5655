package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sportsbook/events"
	"sportsbook/models"
)

// eventService implements the EventService interface
type eventService struct {
	uowFactory UnitOfWorkFactory
	cache      OpenEventsCache
}

// NewEventService creates a new event service. The cache may be nil.
func NewEventService(uowFactory UnitOfWorkFactory, cache OpenEventsCache) EventService {
	return &eventService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

// CreateEvent creates an open event after validating the odds
func (s *eventService) CreateEvent(ctx context.Context, name string, odds models.Odds) (*models.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if !odds.Valid() {
		return nil, ErrInvalidOdds
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	event := &models.Event{
		Name:   name,
		Odds:   odds,
		Status: models.EventStatusOpen,
	}

	if err := uow.EventRepository().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateCache(ctx)

	return event, nil
}

// GetEventByID retrieves an event
func (s *eventService) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	return event, nil
}

// GetOpenEvents returns events accepting bets, served from the cache when warm
func (s *eventService) GetOpenEvents(ctx context.Context) ([]*models.Event, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetOpenEvents(ctx); ok {
			return cached, nil
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	openEvents, err := uow.EventRepository().GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open events: %w", err)
	}

	if s.cache != nil {
		s.cache.SetOpenEvents(ctx, openEvents)
	}

	return openEvents, nil
}

// GetAllEvents returns every event
func (s *eventService) GetAllEvents(ctx context.Context) ([]*models.Event, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	eventList, err := uow.EventRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	return eventList, nil
}

// IsEventOpen reports whether the event accepts bets. Fails closed: an
// unknown event or a lookup failure counts as not open.
func (s *eventService) IsEventOpen(ctx context.Context, id uuid.UUID) bool {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Warn("Event open check failed to begin transaction")
		return false
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, id)
	if err != nil {
		log.WithError(err).WithField("eventID", id).Warn("Event open check lookup failed")
		return false
	}
	if event == nil {
		return false
	}

	return event.IsOpen()
}

// CloseEvent declares the final result and closes the event. The repository's
// conditional update makes the transition exactly once; a repeat close gets
// ErrEventAlreadyClosed and the stored result stands.
func (s *eventService) CloseEvent(ctx context.Context, id uuid.UUID, finalResult models.Outcome) (*models.Event, error) {
	if !finalResult.Valid() {
		return nil, ErrInvalidResult
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().Close(ctx, id, finalResult)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.EventClosedEvent{
		EventID:     event.ID,
		FinalResult: finalResult,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateCache(ctx)

	return event, nil
}

// DeleteEvent removes an open event. Closed events are settlement history and
// stay put.
func (s *eventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return ErrEventNotFound
	}
	if !event.IsOpen() {
		return ErrEventNotOpen
	}

	bets, err := uow.BetRepository().GetByEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check event bets: %w", err)
	}
	if len(bets) > 0 {
		return ErrEventHasBets
	}

	deleted, err := uow.EventRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if !deleted {
		return ErrEventNotFound
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateCache(ctx)

	return nil
}

func (s *eventService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
