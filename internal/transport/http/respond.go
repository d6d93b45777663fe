package http

import (
	"encoding/json"
	"errors"
	"net/http"

	schedulesvc "github.com/YosefHayim/get-barber-sub001/internal/service/schedules"
	waitlistsvc "github.com/YosefHayim/get-barber-sub001/internal/service/waitlist"
	"github.com/YosefHayim/get-barber-sub001/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var schedValidation *schedulesvc.ValidationError
	var waitValidation *waitlistsvc.ValidationError

	switch {
	case errors.As(err, &schedValidation), errors.As(err, &waitValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrDuplicateWaitlist):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "You are already on the waitlist for this barber."})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
