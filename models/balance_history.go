package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial         TransactionType = "initial"
	TransactionTypeBetStake        TransactionType = "bet_stake"
	TransactionTypeBetWinnings     TransactionType = "bet_winnings"
	TransactionTypeAdminAdjustment TransactionType = "admin_adjustment"
)

// BalanceHistory represents a historical balance change. One row is recorded,
// in the same transaction, for every balance mutation in the system.
type BalanceHistory struct {
	ID                  int64           `db:"id" json:"id"`
	UserID              uuid.UUID       `db:"user_id" json:"user_id"`
	BalanceBefore       int64           `db:"balance_before" json:"balance_before"`
	BalanceAfter        int64           `db:"balance_after" json:"balance_after"`
	ChangeAmount        int64           `db:"change_amount" json:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type" json:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata" json:"transaction_metadata,omitempty"`
	RelatedBetID        *uuid.UUID      `db:"related_bet_id" json:"related_bet_id,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
