package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sportsbook/database"
	"sportsbook/models"
	"sportsbook/service"
)

// EventRepository implements the service.EventRepository interface
type EventRepository struct {
	q queryable
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{q: db.Pool}
}

// newEventRepositoryWithTx creates a new event repository with a transaction
func newEventRepositoryWithTx(tx queryable) *EventRepository {
	return &EventRepository{q: tx}
}

const eventColumns = `id, name, odds_home_win, odds_draw, odds_away_win, status, final_result, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Odds.HomeWin,
		&event.Odds.Draw,
		&event.Odds.AwayWin,
		&event.Status,
		&event.FinalResult,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Create persists a new open event and writes back the generated id
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, odds_home_win, odds_draw, odds_away_win, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		event.Name,
		event.Odds.HomeWin,
		event.Odds.Draw,
		event.Odds.AwayWin,
		models.EventStatusOpen,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create event %q: %w", event.Name, err)
	}

	event.Status = models.EventStatusOpen
	return nil
}

// GetByID retrieves an event by id
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}

	return event, nil
}

// GetOpen returns all events still accepting bets
func (r *EventRepository) GetOpen(ctx context.Context) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = $1 ORDER BY created_at DESC`
	return r.queryEvents(ctx, query, models.EventStatusOpen)
}

// GetAll returns all events, newest first
func (r *EventRepository) GetAll(ctx context.Context) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	return r.queryEvents(ctx, query)
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var eventList []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		eventList = append(eventList, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return eventList, nil
}

// Close transitions an event open -> closed and stores the final result. The
// update is conditional on status = 'open', so a second close (or a result
// re-declaration) finds no row and is rejected instead of overwriting.
func (r *EventRepository) Close(ctx context.Context, id uuid.UUID, finalResult models.Outcome) (*models.Event, error) {
	query := `
		UPDATE events
		SET status = $1, final_result = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + eventColumns

	event, err := scanEvent(r.q.QueryRow(ctx, query,
		models.EventStatusClosed, finalResult, id, models.EventStatusOpen))
	if err == pgx.ErrNoRows {
		// Distinguish a missing event from one already closed
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check event: %w", err)
		}
		if existing == nil {
			return nil, service.ErrEventNotFound
		}
		return nil, service.ErrEventAlreadyClosed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to close event %s: %w", id, err)
	}

	return event, nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete event %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}
