package testutil

import (
	"github.com/google/uuid"

	"sportsbook/models"
)

// CreateTestUser creates a player with default values
func CreateTestUser(username string) *models.User {
	return &models.User{
		Username:     username,
		PasswordHash: "$2a$12$test.hash.not.a.real.one.but.the.right.shape",
		Balance:      10000,
		Role:         models.RolePlayer,
	}
}

// CreateTestUserWithBalance creates a player with a specific balance
func CreateTestUserWithBalance(username string, balance int64) *models.User {
	user := CreateTestUser(username)
	user.Balance = balance
	return user
}

// CreateTestAdmin creates a user with the admin role
func CreateTestAdmin(username string) *models.User {
	user := CreateTestUser(username)
	user.Role = models.RoleAdmin
	return user
}

// CreateTestEvent creates an open event with default odds
func CreateTestEvent(name string) *models.Event {
	return &models.Event{
		Name: name,
		Odds: models.Odds{
			HomeWin: 2.5,
			Draw:    3.0,
			AwayWin: 2.8,
		},
		Status: models.EventStatusOpen,
	}
}

// CreateTestEventWithOdds creates an open event with specific odds
func CreateTestEventWithOdds(name string, homeWin, draw, awayWin float64) *models.Event {
	event := CreateTestEvent(name)
	event.Odds = models.Odds{HomeWin: homeWin, Draw: draw, AwayWin: awayWin}
	return event
}

// CreateTestBet creates a pending bet on home_win
func CreateTestBet(userID, eventID uuid.UUID, amount int64) *models.Bet {
	return &models.Bet{
		UserID:       userID,
		EventID:      eventID,
		ChosenOption: models.OutcomeHomeWin,
		Odds:         2.5,
		Amount:       amount,
		Status:       models.BetStatusPending,
	}
}

// CreateTestBetOn creates a pending bet on a specific outcome at specific odds
func CreateTestBetOn(userID, eventID uuid.UUID, option models.Outcome, odds float64, amount int64) *models.Bet {
	bet := CreateTestBet(userID, eventID, amount)
	bet.ChosenOption = option
	bet.Odds = odds
	return bet
}

// CreateTestBalanceHistory creates a balance history entry
func CreateTestBalanceHistory(userID uuid.UUID, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   10000,
		BalanceAfter:    9000,
		ChangeAmount:    -1000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]interface{}{
			"test": true,
		},
	}
}
