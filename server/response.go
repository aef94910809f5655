package server

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"sportsbook/service"
)

// response is the wire envelope for every endpoint
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, response{Success: true, Data: data, Message: message})
}

// respondList includes the count field the way list endpoints report it
func respondList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	writeJSON(w, http.StatusOK, response{Success: true, Data: items, Count: &count})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: false, Message: message})
}

// respondServiceError maps domain rejections to status codes. Anything not in
// the taxonomy is a real failure: log it and keep the body generic.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidOption),
		errors.Is(err, service.ErrInvalidOdds),
		errors.Is(err, service.ErrInvalidResult),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrEventClosed):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrBetNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEventAlreadyClosed),
		errors.Is(err, service.ErrEventNotResolvable),
		errors.Is(err, service.ErrEventNotOpen),
		errors.Is(err, service.ErrEventHasBets),
		errors.Is(err, service.ErrUsernameTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
