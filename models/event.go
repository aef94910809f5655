package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is one of the three fixed result keys for an event
type Outcome string

const (
	OutcomeHomeWin Outcome = "home_win"
	OutcomeDraw    Outcome = "draw"
	OutcomeAwayWin Outcome = "away_win"
)

// Outcomes lists every valid outcome key in wire order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeHomeWin, OutcomeDraw, OutcomeAwayWin}
}

// Valid reports whether the outcome is one of the three fixed keys.
func (o Outcome) Valid() bool {
	return o == OutcomeHomeWin || o == OutcomeDraw || o == OutcomeAwayWin
}

// Odds holds the fixed payout multipliers for each outcome of an event.
// Each must be greater than 1.0; they are set at creation and never change.
type Odds struct {
	HomeWin float64 `db:"odds_home_win" json:"home_win"`
	Draw    float64 `db:"odds_draw" json:"draw"`
	AwayWin float64 `db:"odds_away_win" json:"away_win"`
}

// For returns the multiplier for the given outcome.
func (o Odds) For(outcome Outcome) float64 {
	switch outcome {
	case OutcomeHomeWin:
		return o.HomeWin
	case OutcomeDraw:
		return o.Draw
	case OutcomeAwayWin:
		return o.AwayWin
	}
	return 0
}

// Valid reports whether all three multipliers are present and above 1.0.
func (o Odds) Valid() bool {
	return o.HomeWin > 1.0 && o.Draw > 1.0 && o.AwayWin > 1.0
}

// EventStatus represents the lifecycle state of an event
type EventStatus string

const (
	EventStatusOpen   EventStatus = "open"
	EventStatusClosed EventStatus = "closed"
)

// Event represents a betting event with fixed three-way odds
type Event struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Odds        Odds        `db:"-" json:"odds"`
	Status      EventStatus `db:"status" json:"status"`
	FinalResult *Outcome    `db:"final_result" json:"final_result,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// IsOpen reports whether the event still accepts bets.
func (e *Event) IsOpen() bool {
	return e.Status == EventStatusOpen
}

// IsResolvable reports whether the event is closed with a declared result.
func (e *Event) IsResolvable() bool {
	return e.Status == EventStatusClosed && e.FinalResult != nil
}
