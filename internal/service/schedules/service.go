package schedules

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YosefHayim/get-barber-sub001/internal/clock"
	"github.com/YosefHayim/get-barber-sub001/internal/domain"
	"github.com/YosefHayim/get-barber-sub001/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// Service owns the recurring-schedule lifecycle: create, pause, resume,
// skip-next, cancel, update, listing and stats.
type Service struct {
	repo  store.ScheduleRepository
	clock clock.Clock
}

func NewService(repo store.ScheduleRepository, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{repo: repo, clock: clk}
}

type CreateInput struct {
	CustomerID         string
	BarberID           string
	ServiceID          string
	Frequency          domain.Frequency
	DayOfWeek          time.Weekday
	CustomIntervalDays int
	PreferredTime      string
	StartDate          time.Time
	EndDate            *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.RecurringSchedule, error) {
	if in.CustomerID == "" {
		return domain.RecurringSchedule{}, validationError("customer_id is required")
	}
	if in.BarberID == "" {
		return domain.RecurringSchedule{}, validationError("barber_id is required")
	}
	if in.ServiceID == "" {
		return domain.RecurringSchedule{}, validationError("service_id is required")
	}
	if !in.Frequency.Valid() {
		return domain.RecurringSchedule{}, validationError("unsupported frequency")
	}
	if in.Frequency == domain.FrequencyCustom && in.CustomIntervalDays < 1 {
		return domain.RecurringSchedule{}, validationError("custom_interval_days is required for custom frequency")
	}
	if in.Frequency != domain.FrequencyCustom && in.CustomIntervalDays != 0 {
		return domain.RecurringSchedule{}, validationError("custom_interval_days is only valid for custom frequency")
	}
	if in.DayOfWeek < time.Sunday || in.DayOfWeek > time.Saturday {
		return domain.RecurringSchedule{}, validationError("invalid day_of_week")
	}
	preferredTime := strings.TrimSpace(in.PreferredTime)
	if _, err := domain.ParseClock(preferredTime); err != nil {
		return domain.RecurringSchedule{}, validationError("preferred_time must be HH:mm")
	}
	if in.StartDate.IsZero() {
		return domain.RecurringSchedule{}, validationError("start_date is required")
	}

	start := domain.DateOnly(in.StartDate)
	var end *time.Time
	if in.EndDate != nil {
		e := domain.DateOnly(*in.EndDate)
		if e.Before(start) {
			return domain.RecurringSchedule{}, validationError("end_date must not be before start_date")
		}
		end = &e
	}

	next := domain.FirstOccurrence(start, in.DayOfWeek)
	sched := domain.RecurringSchedule{
		CustomerID:         in.CustomerID,
		BarberID:           in.BarberID,
		ServiceID:          in.ServiceID,
		Frequency:          in.Frequency,
		DayOfWeek:          in.DayOfWeek,
		CustomIntervalDays: in.CustomIntervalDays,
		PreferredTime:      preferredTime,
		StartDate:          start,
		EndDate:            end,
		IsActive:           true,
		IsPaused:           false,
		NextBookingDate:    &next,
	}

	return s.repo.Create(ctx, sched)
}

// Pause stops the processor from materializing bookings for the schedule. The
// next booking date is left untouched; the processor skips paused schedules
// regardless of date.
func (s *Service) Pause(ctx context.Context, scheduleID uuid.UUID, until *time.Time) (domain.RecurringSchedule, error) {
	sched, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return domain.RecurringSchedule{}, err
	}
	if !sched.IsActive {
		return domain.RecurringSchedule{}, validationError("schedule is cancelled")
	}

	sched.IsPaused = true
	if until != nil {
		u := domain.DateOnly(*until)
		sched.PausedUntil = &u
	} else {
		sched.PausedUntil = nil
	}
	return s.repo.Update(ctx, sched)
}

// Resume recomputes the next booking date from today. When today already
// falls on the schedule's weekday the date is pushed one week out, so
// resuming never re-triggers a slot that today has already passed.
func (s *Service) Resume(ctx context.Context, scheduleID uuid.UUID) (domain.RecurringSchedule, error) {
	sched, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return domain.RecurringSchedule{}, err
	}
	if !sched.IsActive {
		return domain.RecurringSchedule{}, validationError("schedule is cancelled")
	}
	if !sched.IsPaused {
		return domain.RecurringSchedule{}, validationError("schedule is not paused")
	}

	today := domain.DateOnly(s.clock.Now())
	next := domain.FirstOccurrence(today, sched.DayOfWeek)
	if next.Equal(today) {
		next = next.AddDate(0, 0, 7)
	}

	sched.IsPaused = false
	sched.PausedUntil = nil
	sched.NextBookingDate = &next
	return s.repo.Update(ctx, sched)
}

// SkipNext records a skipped instance for the upcoming occurrence and moves
// the schedule one cadence period forward. The schedule stays active even
// when the new date would fall past the end date; the processor applies the
// end-date check on its next advance.
func (s *Service) SkipNext(ctx context.Context, scheduleID uuid.UUID, reason string) (domain.RecurringSchedule, error) {
	sched, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return domain.RecurringSchedule{}, err
	}
	if !sched.IsActive || sched.NextBookingDate == nil {
		return domain.RecurringSchedule{}, validationError("schedule has no upcoming booking to skip")
	}

	skipped := *sched.NextBookingDate
	_, err = s.repo.CreateInstance(ctx, domain.RecurringBookingInstance{
		ScheduleID:    sched.ID,
		ScheduledDate: skipped,
		Status:        domain.InstanceStatusSkipped,
		SkippedReason: reason,
	})
	if err != nil {
		return domain.RecurringSchedule{}, err
	}

	next := domain.NextOccurrence(skipped, sched.Frequency, sched.DayOfWeek, sched.CustomIntervalDays)
	sched.NextBookingDate = &next
	return s.repo.Update(ctx, sched)
}

// Cancel deactivates the schedule. The next booking date is kept for display;
// the processor never considers inactive schedules due.
func (s *Service) Cancel(ctx context.Context, scheduleID uuid.UUID) (domain.RecurringSchedule, error) {
	sched, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return domain.RecurringSchedule{}, err
	}
	sched.IsActive = false
	return s.repo.Update(ctx, sched)
}

type UpdateInput struct {
	Frequency          *domain.Frequency
	DayOfWeek          *time.Weekday
	PreferredTime      *string
	EndDate            *time.Time
	CustomIntervalDays *int
}

// Update applies a whitelist of field changes. It deliberately does not
// recompute the next booking date; the previously computed date stays in
// place until the next processor tick advances past it under the new cadence.
func (s *Service) Update(ctx context.Context, scheduleID uuid.UUID, in UpdateInput) (domain.RecurringSchedule, error) {
	sched, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return domain.RecurringSchedule{}, err
	}

	if in.Frequency != nil {
		if !in.Frequency.Valid() {
			return domain.RecurringSchedule{}, validationError("unsupported frequency")
		}
		sched.Frequency = *in.Frequency
	}
	if in.DayOfWeek != nil {
		if *in.DayOfWeek < time.Sunday || *in.DayOfWeek > time.Saturday {
			return domain.RecurringSchedule{}, validationError("invalid day_of_week")
		}
		sched.DayOfWeek = *in.DayOfWeek
	}
	if in.PreferredTime != nil {
		preferredTime := strings.TrimSpace(*in.PreferredTime)
		if _, err := domain.ParseClock(preferredTime); err != nil {
			return domain.RecurringSchedule{}, validationError("preferred_time must be HH:mm")
		}
		sched.PreferredTime = preferredTime
	}
	if in.EndDate != nil {
		e := domain.DateOnly(*in.EndDate)
		sched.EndDate = &e
	}
	if in.CustomIntervalDays != nil {
		sched.CustomIntervalDays = *in.CustomIntervalDays
	}

	if sched.Frequency == domain.FrequencyCustom && sched.CustomIntervalDays < 1 {
		return domain.RecurringSchedule{}, validationError("custom_interval_days is required for custom frequency")
	}
	if sched.Frequency != domain.FrequencyCustom {
		if in.CustomIntervalDays != nil && *in.CustomIntervalDays != 0 {
			return domain.RecurringSchedule{}, validationError("custom_interval_days is only valid for custom frequency")
		}
		// A switch away from custom drops the stale interval.
		sched.CustomIntervalDays = 0
	}

	return s.repo.Update(ctx, sched)
}

func (s *Service) Get(ctx context.Context, scheduleID uuid.UUID) (domain.RecurringSchedule, error) {
	return s.repo.Get(ctx, scheduleID)
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]domain.RecurringSchedule, error) {
	if customerID == "" {
		return nil, validationError("customer_id is required")
	}
	return s.repo.ListForCustomer(ctx, customerID)
}

func (s *Service) ListForBarber(ctx context.Context, barberID string) ([]domain.RecurringSchedule, error) {
	if barberID == "" {
		return nil, validationError("barber_id is required")
	}
	return s.repo.ListForBarber(ctx, barberID)
}

type Stats struct {
	ScheduleID             uuid.UUID                     `json:"schedule_id"`
	IsActive               bool                          `json:"is_active"`
	IsPaused               bool                          `json:"is_paused"`
	TotalBookingsCompleted int                           `json:"total_bookings_completed"`
	LastBookingDate        *time.Time                    `json:"last_booking_date,omitempty"`
	NextBookingDate        *time.Time                    `json:"next_booking_date,omitempty"`
	InstanceCounts         map[domain.InstanceStatus]int `json:"instance_counts"`
}

func (s *Service) GetStats(ctx context.Context, scheduleID uuid.UUID) (Stats, error) {
	sched, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return Stats{}, err
	}

	instances, err := s.repo.ListInstances(ctx, scheduleID)
	if err != nil {
		return Stats{}, err
	}

	counts := make(map[domain.InstanceStatus]int, 4)
	for _, inst := range instances {
		counts[inst.Status]++
	}

	return Stats{
		ScheduleID:             sched.ID,
		IsActive:               sched.IsActive,
		IsPaused:               sched.IsPaused,
		TotalBookingsCompleted: sched.TotalBookingsCompleted,
		LastBookingDate:        sched.LastBookingDate,
		NextBookingDate:        sched.NextBookingDate,
		InstanceCounts:         counts,
	}, nil
}
