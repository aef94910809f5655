package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sportsbook/models"
	"sportsbook/service"
)

type testHarness struct {
	server     *Server
	users      *mockUserService
	balances   *mockBalanceService
	events     *mockEventService
	bets       *mockBetService
	settlement *mockSettlementService
	history    *mockHistoryRepo
	tokens     *TokenIssuer
}

func newTestHarness() *testHarness {
	h := &testHarness{
		users:      new(mockUserService),
		balances:   new(mockBalanceService),
		events:     new(mockEventService),
		bets:       new(mockBetService),
		settlement: new(mockSettlementService),
		history:    new(mockHistoryRepo),
		tokens:     NewTokenIssuer("test-secret", time.Hour),
	}
	h.server = New(h.users, h.balances, h.events, h.bets, h.settlement, h.history, h.tokens)
	return h
}

func (h *testHarness) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.server.Router().ServeHTTP(rec, req)
	return rec
}

func (h *testHarness) tokenFor(t *testing.T, role models.UserRole) (uuid.UUID, string) {
	t.Helper()
	user := &models.User{ID: uuid.New(), Username: "someone", Role: role}
	token, err := h.tokens.Issue(user)
	require.NoError(t, err)
	return user.ID, token
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestServer_Register(t *testing.T) {
	h := newTestHarness()

	user := &models.User{ID: uuid.New(), Username: "alice", Balance: 10000, Role: models.RolePlayer}
	h.users.On("Register", mock.Anything, "alice", "hunter2hunter2").Return(user, nil)

	rec := h.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "hunter2hunter2"}, "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "alice", data["user"].(map[string]any)["username"])
	// Password hashes never serialize
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestServer_Register_UsernameTaken(t *testing.T) {
	h := newTestHarness()

	h.users.On("Register", mock.Anything, "alice", "hunter2hunter2").Return(nil, service.ErrUsernameTaken)

	rec := h.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "hunter2hunter2"}, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, decodeResponse(t, rec).Success)
}

func TestServer_Login(t *testing.T) {
	h := newTestHarness()

	t.Run("valid credentials issue a usable token", func(t *testing.T) {
		user := &models.User{ID: uuid.New(), Username: "alice", Role: models.RolePlayer}
		h.users.On("Authenticate", mock.Anything, "alice", "correct").Return(user, nil)

		rec := h.request(t, http.MethodPost, "/api/users/login",
			map[string]string{"username": "alice", "password": "correct"}, "")

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeResponse(t, rec).Data.(map[string]any)

		claims, err := h.tokens.Verify(data["token"].(string))
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, models.RolePlayer, claims.Role)
	})

	t.Run("bad credentials get 401", func(t *testing.T) {
		h.users.On("Authenticate", mock.Anything, "alice", "wrong").Return(nil, service.ErrInvalidCredentials)

		rec := h.request(t, http.MethodPost, "/api/users/login",
			map[string]string{"username": "alice", "password": "wrong"}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestServer_AuthMiddleware(t *testing.T) {
	h := newTestHarness()

	t.Run("missing token", func(t *testing.T) {
		rec := h.request(t, http.MethodGet, "/api/users/profile", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := h.request(t, http.MethodGet, "/api/users/profile", nil, "not.a.token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenIssuer("test-secret", -time.Hour)
		token, err := expired.Issue(&models.User{ID: uuid.New(), Role: models.RolePlayer})
		require.NoError(t, err)

		rec := h.request(t, http.MethodGet, "/api/users/profile", nil, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other-secret", time.Hour)
		token, err := other.Issue(&models.User{ID: uuid.New(), Role: models.RolePlayer})
		require.NoError(t, err)

		rec := h.request(t, http.MethodGet, "/api/users/profile", nil, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestServer_RoleGuards(t *testing.T) {
	h := newTestHarness()

	t.Run("player cannot reach admin routes", func(t *testing.T) {
		_, token := h.tokenFor(t, models.RolePlayer)
		rec := h.request(t, http.MethodGet, "/api/events/all", nil, token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin cannot place bets", func(t *testing.T) {
		_, token := h.tokenFor(t, models.RoleAdmin)
		rec := h.request(t, http.MethodPost, "/api/bets/",
			map[string]any{"event_id": uuid.New(), "chosen_option": "home_win", "amount": 100}, token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestServer_PlaceBet(t *testing.T) {
	h := newTestHarness()
	userID, token := h.tokenFor(t, models.RolePlayer)
	eventID := uuid.New()

	t.Run("places a bet for the token's user", func(t *testing.T) {
		bet := &models.Bet{
			ID:           uuid.New(),
			UserID:       userID,
			EventID:      eventID,
			ChosenOption: models.OutcomeHomeWin,
			Odds:         2.5,
			Amount:       1000,
			Status:       models.BetStatusPending,
		}
		h.bets.On("PlaceBet", mock.Anything, userID, eventID, models.OutcomeHomeWin, int64(1000)).Return(bet, nil)

		rec := h.request(t, http.MethodPost, "/api/bets/",
			map[string]any{"event_id": eventID, "chosen_option": "home_win", "amount": 1000}, token)

		assert.Equal(t, http.StatusCreated, rec.Code)
		data := decodeResponse(t, rec).Data.(map[string]any)
		assert.Equal(t, "pending", data["status"])
		assert.Equal(t, 2.5, data["odds"])
	})

	t.Run("insufficient balance maps to 400", func(t *testing.T) {
		h.bets.On("PlaceBet", mock.Anything, userID, eventID, models.OutcomeDraw, int64(999999)).
			Return(nil, service.ErrInsufficientBalance)

		rec := h.request(t, http.MethodPost, "/api/bets/",
			map[string]any{"event_id": eventID, "chosen_option": "draw", "amount": 999999}, token)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("closed event maps to 400", func(t *testing.T) {
		h.bets.On("PlaceBet", mock.Anything, userID, eventID, models.OutcomeAwayWin, int64(100)).
			Return(nil, service.ErrEventClosed)

		rec := h.request(t, http.MethodPost, "/api/bets/",
			map[string]any{"event_id": eventID, "chosen_option": "away_win", "amount": 100}, token)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_CloseEvent(t *testing.T) {
	h := newTestHarness()
	_, token := h.tokenFor(t, models.RoleAdmin)
	eventID := uuid.New()

	t.Run("close carries the settlement summary", func(t *testing.T) {
		finalResult := models.OutcomeHomeWin
		closed := &models.Event{ID: eventID, Status: models.EventStatusClosed, FinalResult: &finalResult}
		summary := &models.SettlementResult{EventID: eventID, Processed: 2, Won: 1, Lost: 1}

		h.events.On("CloseEvent", mock.Anything, eventID, models.OutcomeHomeWin).Return(closed, nil)
		h.settlement.On("SettleEvent", mock.Anything, eventID).Return(summary, nil)

		rec := h.request(t, http.MethodPut, "/api/events/"+eventID.String()+"/close",
			map[string]string{"final_result": "home_win"}, token)

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeResponse(t, rec).Data.(map[string]any)
		settlement := data["settlement"].(map[string]any)
		assert.Equal(t, float64(2), settlement["processed"])
	})

	t.Run("double close maps to 409", func(t *testing.T) {
		other := uuid.New()
		h.events.On("CloseEvent", mock.Anything, other, models.OutcomeDraw).
			Return(nil, service.ErrEventAlreadyClosed)

		rec := h.request(t, http.MethodPut, "/api/events/"+other.String()+"/close",
			map[string]string{"final_result": "draw"}, token)

		assert.Equal(t, http.StatusConflict, rec.Code)
		h.settlement.AssertNotCalled(t, "SettleEvent", mock.Anything, other)
	})
}

func TestServer_EventStatus(t *testing.T) {
	h := newTestHarness()
	eventID := uuid.New()

	h.events.On("IsEventOpen", mock.Anything, eventID).Return(true)

	rec := h.request(t, http.MethodGet, "/api/events/"+eventID.String()+"/status", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]any)
	assert.Equal(t, true, data["is_open"])
}

func TestServer_OpenEventsListIncludesCount(t *testing.T) {
	h := newTestHarness()

	h.events.On("GetOpenEvents", mock.Anything).Return([]*models.Event{
		{ID: uuid.New(), Status: models.EventStatusOpen},
		{ID: uuid.New(), Status: models.EventStatusOpen},
	}, nil)

	rec := h.request(t, http.MethodGet, "/api/events/", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 2, *resp.Count)
}

func TestServer_CheckBalance(t *testing.T) {
	h := newTestHarness()
	userID, token := h.tokenFor(t, models.RolePlayer)

	h.balances.On("CheckSufficientBalance", mock.Anything, userID, int64(500)).Return(true)

	rec := h.request(t, http.MethodGet, "/api/users/"+userID.String()+"/balance/check?amount=500", nil, token)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]any)
	assert.Equal(t, true, data["has_enough_balance"])

	t.Run("missing amount", func(t *testing.T) {
		rec := h.request(t, http.MethodGet, "/api/users/"+userID.String()+"/balance/check", nil, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
