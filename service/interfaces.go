package service

import (
	"context"

	"github.com/google/uuid"

	"sportsbook/events"
	"sportsbook/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, returning nil without error when absent
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user by username, nil when absent
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create persists a new user; the generated id is written back
	Create(ctx context.Context, user *models.User) error

	// GetAll returns all users
	GetAll(ctx context.Context) ([]*models.User, error)

	// Update persists username/role changes for an existing user
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user, reporting whether a row was deleted
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// AddBalance adds to a user's balance atomically
	AddBalance(ctx context.Context, id uuid.UUID, amount int64) error

	// DeductBalance deducts from a user's balance atomically as a single
	// conditional decrement, failing with ErrInsufficientBalance rather than
	// ever letting the balance go negative
	DeductBalance(ctx context.Context, id uuid.UUID, amount int64) error
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// Create persists a new open event
	Create(ctx context.Context, event *models.Event) error

	// GetByID retrieves an event by id, nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)

	// GetOpen returns all events still accepting bets
	GetOpen(ctx context.Context) ([]*models.Event, error)

	// GetAll returns all events, newest first
	GetAll(ctx context.Context) ([]*models.Event, error)

	// Close transitions an event open -> closed and stores the final result.
	// The update is conditional on status = 'open' so the transition happens
	// exactly once; returns ErrEventNotFound or ErrEventAlreadyClosed.
	Close(ctx context.Context, id uuid.UUID, finalResult models.Outcome) (*models.Event, error)

	// Delete removes an event, reporting whether a row was deleted
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create persists a new pending bet
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a bet by id, nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)

	// GetByUser returns all bets for a user, newest first
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*models.Bet, error)

	// GetByEvent returns all bets for an event, newest first
	GetByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Bet, error)

	// GetPendingByEvent returns the pending bets for an event
	GetPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Bet, error)

	// GetAll returns all bets, newest first
	GetAll(ctx context.Context) ([]*models.Bet, error)

	// Settle flips a bet to won/lost and records winnings. The update is
	// guarded by status = 'pending'; it reports false when the bet was
	// already settled, so the transition is one-way and happens at most once.
	Settle(ctx context.Context, id uuid.UUID, status models.BetStatus, winnings int64) (bool, error)

	// GetStats returns betting statistics for a user
	GetStats(ctx context.Context, userID uuid.UUID) (*models.BetStats, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BalanceHistory, error)
}

// UserService defines the interface for account operations
type UserService interface {
	// Register creates a player account with the configured starting balance
	Register(ctx context.Context, username, password string) (*models.User, error)

	// Authenticate verifies credentials and returns the matching user
	Authenticate(ctx context.Context, username, password string) (*models.User, error)

	// GetUser retrieves a user by id
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetAllUsers returns all users (admin)
	GetAllUsers(ctx context.Context) ([]*models.User, error)

	// CreateUser creates an account with an explicit role and balance (admin)
	CreateUser(ctx context.Context, username, password string, role models.UserRole, balance int64) (*models.User, error)

	// UpdateUser changes a user's username and/or role (admin); passwords
	// never travel through this path
	UpdateUser(ctx context.Context, id uuid.UUID, username *string, role *models.UserRole) (*models.User, error)

	// DeleteUser removes a user (admin)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// BalanceService is the balance manager: the only component that mutates a
// user's balance outside of bet placement and settlement
type BalanceService interface {
	// CheckSufficientBalance reports whether the user holds at least amount.
	// Fails closed: returns false when the lookup fails.
	CheckSufficientBalance(ctx context.Context, userID uuid.UUID, amount int64) bool

	// Debit subtracts amount from the user's balance and returns the updated
	// balance; the balance never goes negative
	Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)

	// Credit adds amount to the user's balance and returns the updated balance
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

// EventService defines the interface for event lifecycle operations
type EventService interface {
	// CreateEvent creates an open event after validating the odds
	CreateEvent(ctx context.Context, name string, odds models.Odds) (*models.Event, error)

	// GetEventByID retrieves an event
	GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)

	// GetOpenEvents returns events accepting bets
	GetOpenEvents(ctx context.Context) ([]*models.Event, error)

	// GetAllEvents returns every event (admin)
	GetAllEvents(ctx context.Context) ([]*models.Event, error)

	// IsEventOpen reports whether the event accepts bets; fails closed
	IsEventOpen(ctx context.Context, id uuid.UUID) bool

	// CloseEvent declares the final result and closes the event exactly once
	CloseEvent(ctx context.Context, id uuid.UUID, finalResult models.Outcome) (*models.Event, error)

	// DeleteEvent removes an open event (admin); closed events are history
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

// BetService defines the interface for bet placement and queries
type BetService interface {
	// PlaceBet validates the request, debits the stake and creates a pending
	// bet with the event's odds snapshotted, all in one transaction
	PlaceBet(ctx context.Context, userID, eventID uuid.UUID, chosenOption models.Outcome, amount int64) (*models.Bet, error)

	// GetUserBets returns the user's betting history
	GetUserBets(ctx context.Context, userID uuid.UUID) ([]*models.Bet, error)

	// GetUserBetStats returns aggregate statistics for the user's bets
	GetUserBetStats(ctx context.Context, userID uuid.UUID) (*models.BetStats, error)

	// GetEventBets returns all bets for an event (admin)
	GetEventBets(ctx context.Context, eventID uuid.UUID) ([]*models.Bet, error)

	// GetAllBets returns every bet (admin)
	GetAllBets(ctx context.Context) ([]*models.Bet, error)
}

// SettlementService resolves the pending bets of a closed event
type SettlementService interface {
	// SettleEvent resolves every pending bet for the event against its final
	// result. Each bet is an independent unit of work: one failure is counted
	// and logged, never aborting the siblings. Safe to re-invoke.
	SettleEvent(ctx context.Context, eventID uuid.UUID) (*models.SettlementResult, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// OpenEventsCache caches the open-events listing. Implementations fail open:
// a cache miss or backend outage means reads fall through to the database.
type OpenEventsCache interface {
	// GetOpenEvents returns the cached listing and whether it was present
	GetOpenEvents(ctx context.Context) ([]*models.Event, bool)

	// SetOpenEvents stores the listing
	SetOpenEvents(ctx context.Context, events []*models.Event)

	// Invalidate drops the cached listing after any event mutation
	Invalidate(ctx context.Context)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	EventRepository() EventRepository
	BetRepository() BetRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
