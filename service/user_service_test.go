package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sportsbook/models"
)

func setupUserServiceMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockBalanceHistoryRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, new(MockEventRepository), new(MockBetRepository), mockHistoryRepo)

	return mockFactory, mockUoW, mockUserRepo, mockHistoryRepo
}

func TestUserService_Register(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	ctx := context.Background()

	t.Run("creates a player with the starting balance", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)

		mockUserRepo.On("GetByUsername", ctx, "alice").Return(nil, nil)
		mockUserRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Username == "alice" &&
				u.Role == models.RolePlayer &&
				u.Balance == 10000 &&
				u.PasswordHash != "" && u.PasswordHash != "hunter2hunter2"
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = uuid.New()
		})

		mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
			return h.BalanceBefore == 0 &&
				h.BalanceAfter == 10000 &&
				h.ChangeAmount == 10000 &&
				h.TransactionType == models.TransactionTypeInitial
		})).Return(nil)

		user, err := service.Register(ctx, "alice", "hunter2hunter2")

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, int64(10000), user.Balance)

		// The stored hash verifies against the original password
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")))

		mockUserRepo.AssertExpectations(t)
		mockHistoryRepo.AssertExpectations(t)
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, _ := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByUsername", ctx, "alice").Return(&models.User{Username: "alice"}, nil)

		user, err := service.Register(ctx, "alice", "hunter2hunter2")

		assert.ErrorIs(t, err, ErrUsernameTaken)
		assert.Nil(t, user)
		mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		mockFactory, _, _, _ := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		user, err := service.Register(ctx, "bob", "short")

		assert.Error(t, err)
		assert.Nil(t, user)
		mockFactory.AssertNotCalled(t, "Create")
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	storedUser := &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: string(hash),
		Balance:      10000,
		Role:         models.RolePlayer,
	}

	t.Run("valid credentials", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, _ := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByUsername", ctx, "alice").Return(storedUser, nil)

		user, err := service.Authenticate(ctx, "alice", "correct-password")

		require.NoError(t, err)
		assert.Equal(t, storedUser.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, _ := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByUsername", ctx, "alice").Return(storedUser, nil)

		user, err := service.Authenticate(ctx, "alice", "wrong-password")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, user)
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, _ := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByUsername", ctx, "nobody").Return(nil, nil)

		user, err := service.Authenticate(ctx, "nobody", "whatever")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, user)
	})
}

func TestUserService_CreateUser(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	ctx := context.Background()

	t.Run("rejects an invalid role", func(t *testing.T) {
		mockFactory, _, _, _ := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		user, err := service.CreateUser(ctx, "carol", "password123", models.UserRole("superuser"), 5000)

		assert.Error(t, err)
		assert.Nil(t, user)
		mockFactory.AssertNotCalled(t, "Create")
	})

	t.Run("zero balance skips the history entry", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByUsername", ctx, "admin2").Return(nil, nil)
		mockUserRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleAdmin && u.Balance == 0
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = uuid.New()
		})

		user, err := service.CreateUser(ctx, "admin2", "password123", models.RoleAdmin, 0)

		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
		mockHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	ctx := context.Background()

	t.Run("updates role only", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, _ := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		id := uuid.New()
		existing := &models.User{ID: id, Username: "dave", Role: models.RolePlayer}
		newRole := models.RoleAdmin

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, id).Return(existing, nil)
		mockUserRepo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.ID == id && u.Username == "dave" && u.Role == models.RoleAdmin
		})).Return(nil)

		user, err := service.UpdateUser(ctx, id, nil, &newRole)

		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
	})

	t.Run("missing user", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, _ := setupUserServiceMocks()
		service := NewUserService(mockFactory)

		id := uuid.New()
		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, id).Return(nil, nil)

		user, err := service.UpdateUser(ctx, id, nil, nil)

		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, user)
	})
}
