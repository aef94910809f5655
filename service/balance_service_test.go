package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sportsbook/models"
)

func setupBalanceServiceMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockBalanceHistoryRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, new(MockEventRepository), new(MockBetRepository), mockHistoryRepo)

	return mockFactory, mockUoW, mockUserRepo, mockHistoryRepo
}

func TestBalanceService_CheckSufficientBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	cases := []struct {
		name    string
		amount  int64
		user    *models.User
		lookup  error
		expects bool
	}{
		{"balance covers amount", 500, &models.User{ID: userID, Balance: 1000}, nil, true},
		{"exact balance", 1000, &models.User{ID: userID, Balance: 1000}, nil, true},
		{"balance short", 1001, &models.User{ID: userID, Balance: 1000}, nil, false},
		{"unknown user fails closed", 100, nil, nil, false},
		{"lookup error fails closed", 100, nil, errors.New("connection reset"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockFactory, mockUoW, mockUserRepo, _ := setupBalanceServiceMocks()
			service := NewBalanceService(mockFactory)

			mockFactory.On("Create").Return(mockUoW)
			mockUoW.On("Begin", ctx).Return(nil)
			mockUoW.On("Rollback").Return(nil)
			if tc.user != nil {
				mockUserRepo.On("GetByID", ctx, userID).Return(tc.user, nil)
			} else {
				mockUserRepo.On("GetByID", ctx, userID).Return(nil, tc.lookup)
			}

			assert.Equal(t, tc.expects, service.CheckSufficientBalance(ctx, userID, tc.amount))
		})
	}

	t.Run("non-positive amount never passes", func(t *testing.T) {
		mockFactory, _, _, _ := setupBalanceServiceMocks()
		service := NewBalanceService(mockFactory)

		assert.False(t, service.CheckSufficientBalance(ctx, userID, 0))
		assert.False(t, service.CheckSufficientBalance(ctx, userID, -10))
		mockFactory.AssertNotCalled(t, "Create")
	})
}

func TestBalanceService_Debit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("debits and records the adjustment", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := setupBalanceServiceMocks()
		service := NewBalanceService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, userID).Return(&models.User{ID: userID, Balance: 1000}, nil)
		mockUserRepo.On("DeductBalance", ctx, userID, int64(300)).Return(nil)
		mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
			return h.ChangeAmount == -300 &&
				h.BalanceAfter == 700 &&
				h.TransactionType == models.TransactionTypeAdminAdjustment
		})).Return(nil)

		newBalance, err := service.Debit(ctx, userID, 300)

		assert.NoError(t, err)
		assert.Equal(t, int64(700), newBalance)
	})

	t.Run("insufficient balance propagates and nothing commits", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := setupBalanceServiceMocks()
		service := NewBalanceService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, userID).Return(&models.User{ID: userID, Balance: 100}, nil)
		mockUserRepo.On("DeductBalance", ctx, userID, int64(300)).Return(ErrInsufficientBalance)

		_, err := service.Debit(ctx, userID, 300)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
		mockHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		mockUoW.AssertNotCalled(t, "Commit")
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		mockFactory, _, _, _ := setupBalanceServiceMocks()
		service := NewBalanceService(mockFactory)

		_, err := service.Debit(ctx, userID, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		mockFactory.AssertNotCalled(t, "Create")
	})
}

func TestBalanceService_Credit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("credits and records the adjustment", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := setupBalanceServiceMocks()
		service := NewBalanceService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, userID).Return(&models.User{ID: userID, Balance: 1000}, nil)
		mockUserRepo.On("AddBalance", ctx, userID, int64(500)).Return(nil)
		mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
			return h.ChangeAmount == 500 && h.BalanceAfter == 1500
		})).Return(nil)

		newBalance, err := service.Credit(ctx, userID, 500)

		assert.NoError(t, err)
		assert.Equal(t, int64(1500), newBalance)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, _ := setupBalanceServiceMocks()
		service := NewBalanceService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, userID).Return(nil, nil)

		_, err := service.Credit(ctx, userID, 500)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
