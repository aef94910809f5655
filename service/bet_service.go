package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"sportsbook/events"
	"sportsbook/models"
)

// betService implements the BetService interface
type betService struct {
	uowFactory UnitOfWorkFactory
}

// NewBetService creates a new bet service
func NewBetService(uowFactory UnitOfWorkFactory) BetService {
	return &betService{
		uowFactory: uowFactory,
	}
}

// PlaceBet validates the request and, in a single transaction, debits the
// stake and creates a pending bet carrying a snapshot of the event's odds
// for the chosen option. Rejections are checked in a fixed order: amount,
// option, balance, event state. The balance and event checks fail closed,
// so an unknown user reads as insufficient balance and an unknown event as
// closed.
func (s *betService) PlaceBet(ctx context.Context, userID, eventID uuid.UUID, chosenOption models.Outcome, amount int64) (*models.Bet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !chosenOption.Valid() {
		return nil, ErrInvalidOption
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.Balance < amount {
		return nil, ErrInsufficientBalance
	}

	event, err := uow.EventRepository().GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || !event.IsOpen() {
		return nil, ErrEventClosed
	}

	// The conditional decrement re-checks the balance under the transaction;
	// the read above can be stale under concurrent placements
	if err := uow.UserRepository().DeductBalance(ctx, userID, amount); err != nil {
		return nil, err
	}

	bet := &models.Bet{
		UserID:       userID,
		EventID:      eventID,
		ChosenOption: chosenOption,
		Odds:         event.Odds.For(chosenOption),
		Amount:       amount,
		Status:       models.BetStatusPending,
	}

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    user.Balance - amount,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeBetStake,
		TransactionMetadata: map[string]any{
			"event_id":      eventID.String(),
			"chosen_option": string(chosenOption),
			"odds":          bet.Odds,
		},
		RelatedBetID: &bet.ID,
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:        bet.ID,
		UserID:       userID,
		EventID:      eventID,
		ChosenOption: chosenOption,
		Amount:       amount,
		Odds:         bet.Odds,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

// GetUserBets returns the user's betting history
func (s *betService) GetUserBets(ctx context.Context, userID uuid.UUID) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	return bets, nil
}

// GetUserBetStats returns aggregate statistics for the user's bets
func (s *betService) GetUserBetStats(ctx context.Context, userID uuid.UUID) (*models.BetStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.BetRepository().GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet stats: %w", err)
	}

	return stats, nil
}

// GetEventBets returns all bets for an event
func (s *betService) GetEventBets(ctx context.Context, eventID uuid.UUID) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	return bets, nil
}

// GetAllBets returns every bet
func (s *betService) GetAllBets(ctx context.Context) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	return bets, nil
}
