package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/YosefHayim/get-barber-sub001/internal/domain"
	waitlistsvc "github.com/YosefHayim/get-barber-sub001/internal/service/waitlist"
)

type waitlistService interface {
	Join(ctx context.Context, in waitlistsvc.JoinInput) (domain.WaitlistEntry, int, error)
	Leave(ctx context.Context, entryID uuid.UUID) (domain.WaitlistEntry, error)
	Position(ctx context.Context, entryID uuid.UUID) (int, error)
}

type matcherService interface {
	MatchSlot(ctx context.Context, barberID string, slotDate time.Time, slotTime string) (*domain.WaitlistEntry, error)
	AcceptOffer(ctx context.Context, entryID uuid.UUID, bookingID uuid.UUID) (domain.WaitlistEntry, error)
	DeclineOffer(ctx context.Context, entryID uuid.UUID) (domain.WaitlistEntry, error)
}

type sweeperService interface {
	RunTick(ctx context.Context) (waitlistsvc.SweepResult, error)
}

type WaitlistHandler struct {
	svc      waitlistService
	matcher  matcherService
	sweeper  sweeperService
	validate *validator.Validate
	log      *slog.Logger
}

func NewWaitlistHandler(svc waitlistService, matcher matcherService, sweeper sweeperService, validate *validator.Validate, log *slog.Logger) *WaitlistHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WaitlistHandler{
		svc:      svc,
		matcher:  matcher,
		sweeper:  sweeper,
		validate: validate,
		log:      log.With(slog.String("component", "http.waitlist")),
	}
}

type joinWaitlistRequest struct {
	CustomerID         string `json:"customer_id" validate:"required"`
	BarberID           string `json:"barber_id" validate:"required"`
	ServiceID          string `json:"service_id,omitempty"`
	PreferredDate      string `json:"preferred_date,omitempty"`
	PreferredTimeStart string `json:"preferred_time_start,omitempty"`
	PreferredTimeEnd   string `json:"preferred_time_end,omitempty"`
	FlexibleDate       bool   `json:"flexible_date,omitempty"`
	FlexibleTime       bool   `json:"flexible_time,omitempty"`
	Priority           string `json:"priority,omitempty" validate:"omitempty,oneof=normal high vip"`
}

type joinWaitlistResponse struct {
	Entry    domain.WaitlistEntry `json:"entry"`
	Position int                  `json:"position"`
}

func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req joinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var preferredDate time.Time
	if req.PreferredDate != "" {
		d, err := time.Parse(time.DateOnly, req.PreferredDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "preferred_date must be YYYY-MM-DD"})
			return
		}
		preferredDate = d
	}

	entry, position, err := h.svc.Join(r.Context(), waitlistsvc.JoinInput{
		CustomerID:         req.CustomerID,
		BarberID:           req.BarberID,
		ServiceID:          req.ServiceID,
		PreferredDate:      preferredDate,
		PreferredTimeStart: req.PreferredTimeStart,
		PreferredTimeEnd:   req.PreferredTimeEnd,
		FlexibleDate:       req.FlexibleDate,
		FlexibleTime:       req.FlexibleTime,
		Priority:           domain.Priority(req.Priority),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, joinWaitlistResponse{Entry: entry, Position: position})
}

func (h *WaitlistHandler) Leave(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := entryID(w, ps)
	if !ok {
		return
	}
	entry, err := h.svc.Leave(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type positionResponse struct {
	Position int `json:"position"`
}

func (h *WaitlistHandler) Position(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := entryID(w, ps)
	if !ok {
		return
	}
	position, err := h.svc.Position(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{Position: position})
}

type releaseSlotRequest struct {
	Date string `json:"date" validate:"required"`
	Time string `json:"time" validate:"required"`
}

type releaseSlotResponse struct {
	Matched bool                  `json:"matched"`
	Entry   *domain.WaitlistEntry `json:"entry,omitempty"`
}

// ReleaseSlot runs the matcher for a freed slot: at most one waiting entry is
// notified, and a miss leaves the slot unclaimed.
func (h *WaitlistHandler) ReleaseSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req releaseSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}

	entry, err := h.matcher.MatchSlot(r.Context(), ps.ByName("id"), date, req.Time)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, releaseSlotResponse{Matched: entry != nil, Entry: entry})
}

type acceptOfferRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

func (h *WaitlistHandler) AcceptOffer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := entryID(w, ps)
	if !ok {
		return
	}

	var req acceptOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}

	entry, err := h.matcher.AcceptOffer(r.Context(), id, bookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *WaitlistHandler) DeclineOffer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := entryID(w, ps)
	if !ok {
		return
	}
	entry, err := h.matcher.DeclineOffer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// RunSweepTick is the batch entry point for expiry sweeps, exposed for manual
// runs and external cron triggers.
func (h *WaitlistHandler) RunSweepTick(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	result, err := h.sweeper.RunTick(r.Context())
	if err != nil {
		h.log.Error("sweep tick failed", slog.Any("err", err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func entryID(w http.ResponseWriter, ps httprouter.Params) (uuid.UUID, bool) {
	id, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid waitlist entry id"})
		return uuid.Nil, false
	}
	return id, true
}
