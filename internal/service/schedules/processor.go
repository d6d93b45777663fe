package schedules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/YosefHayim/get-barber-sub001/internal/clock"
	"github.com/YosefHayim/get-barber-sub001/internal/domain"
	"github.com/YosefHayim/get-barber-sub001/internal/notify"
	"github.com/YosefHayim/get-barber-sub001/internal/store"
)

// Processor is the batch worker that materializes due schedules into concrete
// bookings. Each due schedule advances independently; one failure is logged
// and does not stop the run. A failed schedule keeps its next booking date,
// so the following tick retries it.
type Processor struct {
	repo     store.ScheduleRepository
	notifier notify.Notifier
	clock    clock.Clock
	log      *slog.Logger
}

func NewProcessor(repo store.ScheduleRepository, notifier notify.Notifier, clk clock.Clock, log *slog.Logger) *Processor {
	if clk == nil {
		clk = clock.System()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		repo:     repo,
		notifier: notifier,
		clock:    clk,
		log:      log.With(slog.String("component", "schedules.processor")),
	}
}

type TickFailure struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
	Err        string    `json:"error"`
}

type TickResult struct {
	Processed []uuid.UUID   `json:"processed"`
	Failed    []TickFailure `json:"failed"`
}

// RunTick processes every schedule due on or before today. The returned
// aggregate reports which schedules advanced and which failed.
func (p *Processor) RunTick(ctx context.Context) (TickResult, error) {
	today := domain.DateOnly(p.clock.Now())

	due, err := p.repo.ListDue(ctx, today)
	if err != nil {
		return TickResult{}, fmt.Errorf("list due schedules: %w", err)
	}

	result := TickResult{}
	for _, sched := range due {
		advanced, err := p.processOne(ctx, sched.ID, today)
		if err != nil {
			p.log.Error("schedule processing failed",
				slog.String("schedule_id", sched.ID.String()),
				slog.Any("err", err),
			)
			result.Failed = append(result.Failed, TickFailure{ScheduleID: sched.ID, Err: err.Error()})
			continue
		}
		if advanced == nil {
			// Re-read under lock found the schedule no longer due.
			continue
		}
		result.Processed = append(result.Processed, sched.ID)
		p.notifyBooked(ctx, *advanced)
	}

	p.log.Info("processor tick finished",
		slog.Time("as_of", today),
		slog.Int("due", len(due)),
		slog.Int("processed", len(result.Processed)),
		slog.Int("failed", len(result.Failed)),
	)
	return result, nil
}

type advancedSchedule struct {
	schedule domain.RecurringSchedule
	booking  domain.Booking
}

// processOne advances a single schedule inside one locked transaction:
// booking, history instance and date move land together or not at all. The
// schedule is re-read under the lock so a concurrent tick that already
// advanced it turns this call into a no-op.
func (p *Processor) processOne(ctx context.Context, scheduleID uuid.UUID, today time.Time) (*advancedSchedule, error) {
	var out *advancedSchedule
	err := p.repo.InScheduleTransaction(ctx, scheduleID, func(ctx context.Context, tx store.ScheduleTx) error {
		sched, err := tx.GetSchedule(ctx, scheduleID)
		if err != nil {
			return err
		}
		if !sched.IsActive || sched.IsPaused || sched.NextBookingDate == nil || sched.NextBookingDate.After(today) {
			return nil
		}

		occurrence := *sched.NextBookingDate

		booking, err := tx.CreateBooking(ctx, domain.Booking{
			CustomerID:  sched.CustomerID,
			BarberID:    sched.BarberID,
			ServiceID:   sched.ServiceID,
			Date:        occurrence,
			StartTime:   sched.PreferredTime,
			Status:      domain.BookingStatusConfirmed,
			IsRecurring: true,
			ScheduleID:  &sched.ID,
		})
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		if _, err := tx.CreateInstance(ctx, domain.RecurringBookingInstance{
			ScheduleID:    sched.ID,
			ScheduledDate: occurrence,
			Status:        domain.InstanceStatusConfirmed,
			BookingID:     &booking.ID,
		}); err != nil {
			return fmt.Errorf("record instance: %w", err)
		}

		next := domain.NextOccurrence(occurrence, sched.Frequency, sched.DayOfWeek, sched.CustomIntervalDays)
		if sched.EndDate != nil && next.After(*sched.EndDate) {
			sched.IsActive = false
			sched.NextBookingDate = nil
		} else {
			sched.NextBookingDate = &next
		}
		sched.LastBookingDate = &occurrence
		sched.TotalBookingsCompleted++

		updated, err := tx.UpdateSchedule(ctx, sched)
		if err != nil {
			return fmt.Errorf("advance schedule: %w", err)
		}

		out = &advancedSchedule{schedule: updated, booking: booking}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Processor) notifyBooked(ctx context.Context, adv advancedSchedule) {
	if p.notifier == nil {
		return
	}
	err := p.notifier.Notify(ctx, notify.Notification{
		UserID:  adv.schedule.CustomerID,
		Event:   notify.EventRecurringBooking,
		Message: "Your recurring appointment has been booked.",
		Payload: map[string]any{
			"schedule_id": adv.schedule.ID.String(),
			"booking_id":  adv.booking.ID.String(),
			"barber_id":   adv.booking.BarberID,
			"date":        adv.booking.Date,
			"start_time":  adv.booking.StartTime,
		},
	})
	if err != nil {
		p.log.Warn("booking notification failed",
			slog.String("schedule_id", adv.schedule.ID.String()),
			slog.Any("err", err),
		)
	}
}
