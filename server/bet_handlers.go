package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sportsbook/models"
)

type placeBetRequest struct {
	EventID      uuid.UUID      `json:"event_id"`
	ChosenOption models.Outcome `json:"chosen_option"`
	Amount       int64          `json:"amount"`
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EventID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "event_id is required")
		return
	}

	bet, err := s.bets.PlaceBet(r.Context(), userID, req.EventID, req.ChosenOption, req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusCreated, bet, "bet placed successfully")
}

func (s *Server) handleMyBets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	bets, err := s.bets.GetUserBets(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondList(w, bets)
}

func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	stats, err := s.bets.GetUserBetStats(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, stats)
}

func (s *Server) handleAllBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.bets.GetAllBets(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondList(w, bets)
}

func (s *Server) handleEventBets(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	bets, err := s.bets.GetEventBets(r.Context(), eventID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondList(w, bets)
}

// handleProcessEvent re-runs settlement for a closed event. Safe to repeat:
// settled bets are skipped.
func (s *Server) handleProcessEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	result, err := s.settlement.SettleEvent(r.Context(), eventID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, result, "bets processed successfully")
}
