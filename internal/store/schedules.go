package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/YosefHayim/get-barber-sub001/internal/domain"
)

// ScheduleRepository persists recurring schedules and their occurrence
// history.
type ScheduleRepository interface {
	Create(ctx context.Context, sched domain.RecurringSchedule) (domain.RecurringSchedule, error)
	Get(ctx context.Context, id uuid.UUID) (domain.RecurringSchedule, error)
	Update(ctx context.Context, sched domain.RecurringSchedule) (domain.RecurringSchedule, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.RecurringSchedule, error)
	ListForBarber(ctx context.Context, barberID string) ([]domain.RecurringSchedule, error)

	// ListDue returns active, non-paused schedules whose next booking date is
	// on or before asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringSchedule, error)

	CreateInstance(ctx context.Context, inst domain.RecurringBookingInstance) (domain.RecurringBookingInstance, error)
	ListInstances(ctx context.Context, scheduleID uuid.UUID) ([]domain.RecurringBookingInstance, error)

	// InScheduleTransaction runs fn atomically while holding an exclusive
	// lock on the schedule, so one advance (booking + instance + date move)
	// cannot interleave with another for the same schedule.
	InScheduleTransaction(ctx context.Context, scheduleID uuid.UUID, fn func(ctx context.Context, tx ScheduleTx) error) error
}

// ScheduleTx is the unit of work available inside InScheduleTransaction.
// CreateBooking is the port onto the booking aggregate owned elsewhere.
type ScheduleTx interface {
	GetSchedule(ctx context.Context, id uuid.UUID) (domain.RecurringSchedule, error)
	UpdateSchedule(ctx context.Context, sched domain.RecurringSchedule) (domain.RecurringSchedule, error)
	CreateInstance(ctx context.Context, inst domain.RecurringBookingInstance) (domain.RecurringBookingInstance, error)
	CreateBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error)
}
