package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sportsbook/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type createUserRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	Balance  int64           `json:"balance"`
}

type updateUserRequest struct {
	Username *string          `json:"username,omitempty"`
	Role     *models.UserRole `json:"role,omitempty"`
}

type adjustBalanceRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusCreated, authResponse{Token: token, User: user}, "user registered successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	user, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, user)
}

// handleCheckBalance surfaces the sufficiency check without exposing the
// exact balance to other players
func (s *Server) handleCheckBalance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil || amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount is required and must be a positive number")
		return
	}

	hasEnough := s.balances.CheckSufficientBalance(r.Context(), id, amount)
	respondData(w, http.StatusOK, map[string]bool{"has_enough_balance": hasEnough})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.GetAllUsers(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondList(w, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = models.RolePlayer
	}

	user, err := s.users.CreateUser(r.Context(), req.Username, req.Password, req.Role, req.Balance)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusCreated, user, "user created successfully")
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.UpdateUser(r.Context(), id, req.Username, req.Role)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, user, "user updated successfully")
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := s.users.DeleteUser(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, nil, "user deleted successfully")
}

func (s *Server) handleUserHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = parsed
	}

	entries, err := s.history.GetByUser(r.Context(), id, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondList(w, entries)
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	s.handleAdjustBalance(w, r, s.balances.Credit)
}

func (s *Server) handleDebit(w http.ResponseWriter, r *http.Request) {
	s.handleAdjustBalance(w, r, s.balances.Debit)
}

func (s *Server) handleAdjustBalance(w http.ResponseWriter, r *http.Request, adjust func(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req adjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newBalance, err := adjust(r.Context(), id, req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, map[string]int64{"balance": newBalance}, "balance updated successfully")
}
