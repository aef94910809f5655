package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// BetStatus represents the settlement state of a bet
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
)

// Bet represents a stake placed against an event outcome.
// Odds is a snapshot of the event's multiplier for the chosen option at
// placement time; later changes to the event never touch it. Status moves
// pending -> won|lost exactly once and Winnings is non-zero only for won.
type Bet struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	EventID      uuid.UUID  `db:"event_id" json:"event_id"`
	ChosenOption Outcome    `db:"chosen_option" json:"chosen_option"`
	Odds         float64    `db:"odds" json:"odds"`
	Amount       int64      `db:"amount" json:"amount"`
	Status       BetStatus  `db:"status" json:"status"`
	Winnings     int64      `db:"winnings" json:"winnings"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	SettledAt    *time.Time `db:"settled_at" json:"settled_at,omitempty"`
}

// IsPending reports whether the bet is still awaiting settlement.
func (b *Bet) IsPending() bool {
	return b.Status == BetStatusPending
}

// Payout computes the winnings for a won bet: stake times the locked-in odds,
// rounded to the nearest whole unit.
func (b *Bet) Payout() int64 {
	return int64(math.Round(float64(b.Amount) * b.Odds))
}

// BetStats summarizes a user's betting history
type BetStats struct {
	Total         int   `json:"total"`
	Won           int   `json:"won"`
	Lost          int   `json:"lost"`
	Pending       int   `json:"pending"`
	TotalWinnings int64 `json:"total_winnings"`
}

// SettlementResult reports the outcome of settling an event's pending bets
type SettlementResult struct {
	EventID   uuid.UUID `json:"event_id"`
	Processed int       `json:"processed"`
	Won       int       `json:"won"`
	Lost      int       `json:"lost"`
	Failed    int       `json:"failed"`
}
