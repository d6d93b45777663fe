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
	schedulesvc "github.com/YosefHayim/get-barber-sub001/internal/service/schedules"
)

type scheduleService interface {
	Create(ctx context.Context, in schedulesvc.CreateInput) (domain.RecurringSchedule, error)
	Pause(ctx context.Context, scheduleID uuid.UUID, until *time.Time) (domain.RecurringSchedule, error)
	Resume(ctx context.Context, scheduleID uuid.UUID) (domain.RecurringSchedule, error)
	SkipNext(ctx context.Context, scheduleID uuid.UUID, reason string) (domain.RecurringSchedule, error)
	Cancel(ctx context.Context, scheduleID uuid.UUID) (domain.RecurringSchedule, error)
	Update(ctx context.Context, scheduleID uuid.UUID, in schedulesvc.UpdateInput) (domain.RecurringSchedule, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.RecurringSchedule, error)
	ListForBarber(ctx context.Context, barberID string) ([]domain.RecurringSchedule, error)
	GetStats(ctx context.Context, scheduleID uuid.UUID) (schedulesvc.Stats, error)
}

type processorService interface {
	RunTick(ctx context.Context) (schedulesvc.TickResult, error)
}

type SchedulesHandler struct {
	svc       scheduleService
	processor processorService
	validate  *validator.Validate
	log       *slog.Logger
}

func NewSchedulesHandler(svc scheduleService, processor processorService, validate *validator.Validate, log *slog.Logger) *SchedulesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SchedulesHandler{
		svc:       svc,
		processor: processor,
		validate:  validate,
		log:       log.With(slog.String("component", "http.schedules")),
	}
}

type createScheduleRequest struct {
	CustomerID         string `json:"customer_id" validate:"required"`
	BarberID           string `json:"barber_id" validate:"required"`
	ServiceID          string `json:"service_id" validate:"required"`
	Frequency          string `json:"frequency" validate:"required,oneof=weekly biweekly monthly custom"`
	DayOfWeek          string `json:"day_of_week" validate:"required"`
	CustomIntervalDays int    `json:"custom_interval_days,omitempty"`
	PreferredTime      string `json:"preferred_time" validate:"required"`
	StartDate          string `json:"start_date" validate:"required"`
	EndDate            string `json:"end_date,omitempty"`
}

func (h *SchedulesHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	day, err := domain.ParseWeekday(req.DayOfWeek)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start_date must be YYYY-MM-DD"})
		return
	}
	var endDate *time.Time
	if req.EndDate != "" {
		e, err := time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "end_date must be YYYY-MM-DD"})
			return
		}
		endDate = &e
	}

	sched, err := h.svc.Create(r.Context(), schedulesvc.CreateInput{
		CustomerID:         req.CustomerID,
		BarberID:           req.BarberID,
		ServiceID:          req.ServiceID,
		Frequency:          domain.Frequency(req.Frequency),
		DayOfWeek:          day,
		CustomIntervalDays: req.CustomIntervalDays,
		PreferredTime:      req.PreferredTime,
		StartDate:          startDate,
		EndDate:            endDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sched)
}

type pauseScheduleRequest struct {
	Until string `json:"until,omitempty"`
}

func (h *SchedulesHandler) Pause(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := scheduleID(w, ps)
	if !ok {
		return
	}

	var req pauseScheduleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	var until *time.Time
	if req.Until != "" {
		u, err := time.Parse(time.DateOnly, req.Until)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "until must be YYYY-MM-DD"})
			return
		}
		until = &u
	}

	sched, err := h.svc.Pause(r.Context(), id, until)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

func (h *SchedulesHandler) Resume(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := scheduleID(w, ps)
	if !ok {
		return
	}
	sched, err := h.svc.Resume(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

type skipNextRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *SchedulesHandler) SkipNext(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := scheduleID(w, ps)
	if !ok {
		return
	}

	var req skipNextRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	sched, err := h.svc.SkipNext(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

func (h *SchedulesHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := scheduleID(w, ps)
	if !ok {
		return
	}
	sched, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

type updateScheduleRequest struct {
	Frequency          *string `json:"frequency,omitempty" validate:"omitempty,oneof=weekly biweekly monthly custom"`
	DayOfWeek          *string `json:"day_of_week,omitempty"`
	PreferredTime      *string `json:"preferred_time,omitempty"`
	EndDate            *string `json:"end_date,omitempty"`
	CustomIntervalDays *int    `json:"custom_interval_days,omitempty"`
}

func (h *SchedulesHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := scheduleID(w, ps)
	if !ok {
		return
	}

	var req updateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	in := schedulesvc.UpdateInput{
		PreferredTime:      req.PreferredTime,
		CustomIntervalDays: req.CustomIntervalDays,
	}
	if req.Frequency != nil {
		f := domain.Frequency(*req.Frequency)
		in.Frequency = &f
	}
	if req.DayOfWeek != nil {
		day, err := domain.ParseWeekday(*req.DayOfWeek)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		in.DayOfWeek = &day
	}
	if req.EndDate != nil {
		e, err := time.Parse(time.DateOnly, *req.EndDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "end_date must be YYYY-MM-DD"})
			return
		}
		in.EndDate = &e
	}

	sched, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

func (h *SchedulesHandler) ListForCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	scheds, err := h.svc.ListForCustomer(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scheds)
}

func (h *SchedulesHandler) ListForBarber(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	scheds, err := h.svc.ListForBarber(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scheds)
}

func (h *SchedulesHandler) Stats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := scheduleID(w, ps)
	if !ok {
		return
	}
	stats, err := h.svc.GetStats(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// RunProcessorTick is the batch entry point for whatever scheduling facility
// drives the deployment, exposed for manual runs and external cron triggers.
func (h *SchedulesHandler) RunProcessorTick(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	result, err := h.processor.RunTick(r.Context())
	if err != nil {
		h.log.Error("processor tick failed", slog.Any("err", err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func scheduleID(w http.ResponseWriter, ps httprouter.Params) (uuid.UUID, bool) {
	id, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid schedule id"})
		return uuid.Nil, false
	}
	return id, true
}
