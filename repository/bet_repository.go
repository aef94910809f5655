package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sportsbook/database"
	"sportsbook/models"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `id, user_id, event_id, chosen_option, odds, amount, status, winnings, created_at, settled_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.UserID,
		&bet.EventID,
		&bet.ChosenOption,
		&bet.Odds,
		&bet.Amount,
		&bet.Status,
		&bet.Winnings,
		&bet.CreatedAt,
		&bet.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// Create persists a new pending bet and writes back the generated id
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (user_id, event_id, chosen_option, odds, amount, status, winnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.UserID,
		bet.EventID,
		bet.ChosenOption,
		bet.Odds,
		bet.Amount,
		models.BetStatusPending,
		int64(0),
	).Scan(&bet.ID, &bet.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet for user %s: %w", bet.UserID, err)
	}

	bet.Status = models.BetStatusPending
	bet.Winnings = 0
	return nil
}

// GetByID retrieves a bet by id
func (r *BetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s: %w", id, err)
	}

	return bet, nil
}

// GetByUser returns all bets for a user, newest first
func (r *BetRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryBets(ctx, query, userID)
}

// GetByEvent returns all bets for an event, newest first
func (r *BetRepository) GetByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE event_id = $1 ORDER BY created_at DESC`
	return r.queryBets(ctx, query, eventID)
}

// GetPendingByEvent returns the pending bets for an event in placement order
func (r *BetRepository) GetPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE event_id = $1 AND status = $2 ORDER BY created_at ASC`
	return r.queryBets(ctx, query, eventID, models.BetStatusPending)
}

// GetAll returns every bet, newest first
func (r *BetRepository) GetAll(ctx context.Context) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets ORDER BY created_at DESC`
	return r.queryBets(ctx, query)
}

func (r *BetRepository) queryBets(ctx context.Context, query string, args ...any) ([]*models.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}

// Settle flips a pending bet to won/lost and records its winnings. The guard
// on status = 'pending' makes the transition one-way: settling an already
// settled bet updates no row and reports false.
func (r *BetRepository) Settle(ctx context.Context, id uuid.UUID, status models.BetStatus, winnings int64) (bool, error) {
	if status != models.BetStatusWon && status != models.BetStatusLost {
		return false, fmt.Errorf("invalid settlement status %q", status)
	}

	query := `
		UPDATE bets
		SET status = $1, winnings = $2, settled_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, err := r.q.Exec(ctx, query, status, winnings, id, models.BetStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to settle bet %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetStats returns betting statistics for a user
func (r *BetRepository) GetStats(ctx context.Context, userID uuid.UUID) (*models.BetStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'lost'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(winnings), 0)
		FROM bets
		WHERE user_id = $1
	`

	var stats models.BetStats
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&stats.Total,
		&stats.Won,
		&stats.Lost,
		&stats.Pending,
		&stats.TotalWinnings,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet stats for user %s: %w", userID, err)
	}

	return &stats, nil
}
