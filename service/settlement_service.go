package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sportsbook/events"
	"sportsbook/models"
)

// settlementService implements the SettlementService interface
type settlementService struct {
	uowFactory UnitOfWorkFactory
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
	}
}

// SettleEvent resolves every pending bet of a closed event against its final
// result. The pending set is read once as a snapshot, then each bet is
// settled in its own transaction: the status flip is guarded by
// status = 'pending', and a winner's credit commits atomically with it. A
// failed bet is counted and logged; its siblings proceed. Re-invoking is
// safe: already-settled bets update no row and are skipped.
func (s *settlementService) SettleEvent(ctx context.Context, eventID uuid.UUID) (*models.SettlementResult, error) {
	event, pending, err := s.loadSnapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}

	finalResult := *event.FinalResult
	result := &models.SettlementResult{EventID: eventID}

	for _, bet := range pending {
		won := bet.ChosenOption == finalResult

		settled, err := s.settleBet(ctx, bet, won)
		if err != nil {
			result.Failed++
			log.WithError(err).WithFields(log.Fields{
				"betID":   bet.ID,
				"userID":  bet.UserID,
				"eventID": eventID,
			}).Error("Failed to settle bet")
			continue
		}
		if !settled {
			// Lost the race to another settlement run
			continue
		}

		result.Processed++
		if won {
			result.Won++
		} else {
			result.Lost++
		}
	}

	log.WithFields(log.Fields{
		"eventID":   eventID,
		"processed": result.Processed,
		"won":       result.Won,
		"lost":      result.Lost,
		"failed":    result.Failed,
	}).Info("Event settlement finished")

	return result, nil
}

// loadSnapshot reads the event and its pending bets in one read transaction
func (s *settlementService) loadSnapshot(ctx context.Context, eventID uuid.UUID) (*models.Event, []*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, nil, ErrEventNotFound
	}
	if !event.IsResolvable() {
		return nil, nil, ErrEventNotResolvable
	}

	pending, err := uow.BetRepository().GetPendingByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pending bets: %w", err)
	}

	return event, pending, nil
}

// settleBet resolves a single bet in its own transaction. Reports false when
// the bet was no longer pending.
func (s *settlementService) settleBet(ctx context.Context, bet *models.Bet, won bool) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	status := models.BetStatusLost
	var winnings int64
	if won {
		status = models.BetStatusWon
		winnings = bet.Payout()
	}

	settled, err := uow.BetRepository().Settle(ctx, bet.ID, status, winnings)
	if err != nil {
		return false, fmt.Errorf("failed to settle bet: %w", err)
	}
	if !settled {
		return false, nil
	}

	if won {
		user, err := uow.UserRepository().GetByID(ctx, bet.UserID)
		if err != nil {
			return false, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return false, fmt.Errorf("bet %s references unknown user %s", bet.ID, bet.UserID)
		}

		if err := uow.UserRepository().AddBalance(ctx, bet.UserID, winnings); err != nil {
			return false, fmt.Errorf("failed to credit winnings: %w", err)
		}

		history := &models.BalanceHistory{
			UserID:          bet.UserID,
			BalanceBefore:   user.Balance,
			BalanceAfter:    user.Balance + winnings,
			ChangeAmount:    winnings,
			TransactionType: models.TransactionTypeBetWinnings,
			TransactionMetadata: map[string]any{
				"event_id":      bet.EventID.String(),
				"chosen_option": string(bet.ChosenOption),
				"odds":          bet.Odds,
			},
			RelatedBetID: &bet.ID,
		}

		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return false, fmt.Errorf("failed to record balance change: %w", err)
		}
	}

	uow.EventBus().Publish(events.BetSettledEvent{
		BetID:    bet.ID,
		UserID:   bet.UserID,
		EventID:  bet.EventID,
		Status:   status,
		Winnings: winnings,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
