package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is the concrete appointment aggregate. The wider booking lifecycle
// is owned elsewhere; this subsystem only materializes bookings out of
// recurring schedules and links them from waitlist offers.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID          uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	CustomerID  string        `bun:"customer_id,notnull" json:"customer_id"`
	BarberID    string        `bun:"barber_id,notnull" json:"barber_id"`
	ServiceID   string        `bun:"service_id,notnull" json:"service_id"`
	Date        time.Time     `bun:"date,notnull" json:"date"`
	StartTime   string        `bun:"start_time,notnull" json:"start_time"`
	Status      BookingStatus `bun:"status,notnull" json:"status"`
	IsRecurring bool          `bun:"is_recurring,notnull" json:"is_recurring"`
	ScheduleID  *uuid.UUID    `bun:"schedule_id,type:uuid" json:"schedule_id,omitempty"`
	CreatedAt   time.Time     `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time     `bun:"updated_at,notnull" json:"updated_at"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}
