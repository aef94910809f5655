package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sportsbook/models"
)

// balanceService implements the BalanceService interface. It owns the
// check/debit/credit primitives used by admin adjustments; bet placement and
// settlement drive the same repository operations inside their own units of
// work so stake and bet (or payout and status flip) commit together.
type balanceService struct {
	uowFactory UnitOfWorkFactory
}

// NewBalanceService creates a new balance service
func NewBalanceService(uowFactory UnitOfWorkFactory) BalanceService {
	return &balanceService{
		uowFactory: uowFactory,
	}
}

// CheckSufficientBalance reports whether the user holds at least amount.
// Fails closed: an unknown user or a lookup failure counts as insufficient.
func (s *balanceService) CheckSufficientBalance(ctx context.Context, userID uuid.UUID, amount int64) bool {
	if amount <= 0 {
		return false
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Warn("Balance check failed to begin transaction")
		return false
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Warn("Balance check lookup failed")
		return false
	}
	if user == nil {
		return false
	}

	return user.Balance >= amount
}

// Debit subtracts amount from the user's balance as an admin adjustment
func (s *balanceService) Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, ErrUserNotFound
	}

	// The conditional decrement is the real guard against overdraw
	if err := uow.UserRepository().DeductBalance(ctx, userID, amount); err != nil {
		return 0, err
	}

	newBalance := user.Balance - amount
	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeAdminAdjustment,
		TransactionMetadata: map[string]any{
			"direction": "debit",
		},
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return 0, fmt.Errorf("failed to record balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// Credit adds amount to the user's balance as an admin adjustment
func (s *balanceService) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, ErrUserNotFound
	}

	if err := uow.UserRepository().AddBalance(ctx, userID, amount); err != nil {
		return 0, err
	}

	newBalance := user.Balance + amount
	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeAdminAdjustment,
		TransactionMetadata: map[string]any{
			"direction": "credit",
		},
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return 0, fmt.Errorf("failed to record balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}
