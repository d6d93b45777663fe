package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyCustom   Frequency = "custom"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyCustom:
		return true
	}
	return false
}

// RecurringSchedule is a customer's standing booking cadence with a barber.
// NextBookingDate is nil exactly when the schedule has been cancelled or has
// run past its EndDate.
type RecurringSchedule struct {
	bun.BaseModel `bun:"table:recurring_schedules"`

	ID                     uuid.UUID    `bun:"id,pk,type:uuid" json:"id"`
	CustomerID             string       `bun:"customer_id,notnull" json:"customer_id"`
	BarberID               string       `bun:"barber_id,notnull" json:"barber_id"`
	ServiceID              string       `bun:"service_id,notnull" json:"service_id"`
	Frequency              Frequency    `bun:"frequency,notnull" json:"frequency"`
	DayOfWeek              time.Weekday `bun:"day_of_week,notnull" json:"day_of_week"`
	CustomIntervalDays     int          `bun:"custom_interval_days" json:"custom_interval_days,omitempty"`
	PreferredTime          string       `bun:"preferred_time,notnull" json:"preferred_time"`
	StartDate              time.Time    `bun:"start_date,notnull" json:"start_date"`
	EndDate                *time.Time   `bun:"end_date" json:"end_date,omitempty"`
	IsActive               bool         `bun:"is_active,notnull" json:"is_active"`
	IsPaused               bool         `bun:"is_paused,notnull" json:"is_paused"`
	PausedUntil            *time.Time   `bun:"paused_until" json:"paused_until,omitempty"`
	LastBookingDate        *time.Time   `bun:"last_booking_date" json:"last_booking_date,omitempty"`
	NextBookingDate        *time.Time   `bun:"next_booking_date" json:"next_booking_date,omitempty"`
	TotalBookingsCompleted int          `bun:"total_bookings_completed,notnull" json:"total_bookings_completed"`
	CreatedAt              time.Time    `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt              time.Time    `bun:"updated_at,notnull" json:"updated_at"`
}

func (s *RecurringSchedule) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}
