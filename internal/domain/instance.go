package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type InstanceStatus string

const (
	InstanceStatusScheduled InstanceStatus = "scheduled"
	InstanceStatusConfirmed InstanceStatus = "confirmed"
	InstanceStatusCompleted InstanceStatus = "completed"
	InstanceStatusCancelled InstanceStatus = "cancelled"
	InstanceStatusSkipped   InstanceStatus = "skipped"
)

// RecurringBookingInstance is the append-only history record of one occurrence
// of a schedule.
type RecurringBookingInstance struct {
	bun.BaseModel `bun:"table:recurring_booking_instances"`

	ID            uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	ScheduleID    uuid.UUID      `bun:"schedule_id,notnull,type:uuid" json:"schedule_id"`
	ScheduledDate time.Time      `bun:"scheduled_date,notnull" json:"scheduled_date"`
	Status        InstanceStatus `bun:"status,notnull" json:"status"`
	BookingID     *uuid.UUID     `bun:"booking_id,type:uuid" json:"booking_id,omitempty"`
	SkippedReason string         `bun:"skipped_reason" json:"skipped_reason,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time      `bun:"updated_at,notnull" json:"updated_at"`
}

func (i *RecurringBookingInstance) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if i.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			i.ID = id
		}
		if i.CreatedAt.IsZero() {
			i.CreatedAt = now
		}
		if i.UpdatedAt.IsZero() {
			i.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		i.UpdatedAt = now
	}
	return nil
}
