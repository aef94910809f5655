package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sportsbook/models"
)

type createEventRequest struct {
	Name string      `json:"name"`
	Odds models.Odds `json:"odds"`
}

type closeEventRequest struct {
	FinalResult models.Outcome `json:"final_result"`
}

// closeEventResponse pairs the closed event with the settlement summary
type closeEventResponse struct {
	Event      *models.Event            `json:"event"`
	Settlement *models.SettlementResult `json:"settlement,omitempty"`
}

func (s *Server) handleOpenEvents(w http.ResponseWriter, r *http.Request) {
	eventList, err := s.events.GetOpenEvents(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondList(w, eventList)
}

func (s *Server) handleAllEvents(w http.ResponseWriter, r *http.Request) {
	eventList, err := s.events.GetAllEvents(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondList(w, eventList)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := s.events.GetEventByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, event)
}

func (s *Server) handleEventStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	respondData(w, http.StatusOK, map[string]bool{"is_open": s.events.IsEventOpen(r.Context(), id)})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := s.events.CreateEvent(r.Context(), req.Name, req.Odds)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusCreated, event, "event created successfully")
}

// handleCloseEvent closes the event and settles its pending bets in the same
// request. Settlement failures after a successful close are reported in the
// summary, not as a request failure; the close itself already happened.
func (s *Server) handleCloseEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req closeEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := s.events.CloseEvent(r.Context(), id, req.FinalResult)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	settlement, err := s.settlement.SettleEvent(r.Context(), id)
	if err != nil {
		// The event is closed; settlement can be re-run via the process
		// endpoint
		log.WithError(err).WithField("eventID", id).Error("Settlement after close failed")
		respondMessage(w, http.StatusOK, closeEventResponse{Event: event},
			"event closed, settlement pending retry")
		return
	}

	respondMessage(w, http.StatusOK, closeEventResponse{Event: event, Settlement: settlement},
		"event closed successfully")
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := s.events.DeleteEvent(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, nil, "event deleted successfully")
}
