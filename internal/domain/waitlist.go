package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityVIP    Priority = "vip"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityVIP:
		return true
	}
	return false
}

// Rank orders priorities for queue sorting; lower ranks sort first.
func (p Priority) Rank() int {
	switch p {
	case PriorityVIP:
		return 0
	case PriorityHigh:
		return 1
	default:
		return 2
	}
}

type WaitlistStatus string

const (
	WaitlistStatusWaiting   WaitlistStatus = "waiting"
	WaitlistStatusNotified  WaitlistStatus = "notified"
	WaitlistStatusBooked    WaitlistStatus = "booked"
	WaitlistStatusExpired   WaitlistStatus = "expired"
	WaitlistStatusCancelled WaitlistStatus = "cancelled"
)

// WaitlistEntry is a customer's standing request for a freed slot with a
// barber. Position is never stored; it is derived from the queue ordering
// contract (priority desc, created_at asc) at read time.
type WaitlistEntry struct {
	bun.BaseModel `bun:"table:waitlist_entries"`

	ID                 uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	CustomerID         string         `bun:"customer_id,notnull" json:"customer_id"`
	BarberID           string         `bun:"barber_id,notnull" json:"barber_id"`
	ServiceID          string         `bun:"service_id" json:"service_id,omitempty"`
	PreferredDate      time.Time      `bun:"preferred_date,notnull" json:"preferred_date"`
	PreferredTimeStart string         `bun:"preferred_time_start" json:"preferred_time_start,omitempty"`
	PreferredTimeEnd   string         `bun:"preferred_time_end" json:"preferred_time_end,omitempty"`
	FlexibleDate       bool           `bun:"flexible_date,notnull" json:"flexible_date"`
	FlexibleTime       bool           `bun:"flexible_time,notnull" json:"flexible_time"`
	Priority           Priority       `bun:"priority,notnull" json:"priority"`
	Status             WaitlistStatus `bun:"status,notnull" json:"status"`
	BookingID          *uuid.UUID     `bun:"booking_id,type:uuid" json:"booking_id,omitempty"`
	NotifiedAt         *time.Time     `bun:"notified_at" json:"notified_at,omitempty"`
	ExpiresAt          *time.Time     `bun:"expires_at" json:"expires_at,omitempty"`
	CreatedAt          time.Time      `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt          time.Time      `bun:"updated_at,notnull" json:"updated_at"`
}

func (e *WaitlistEntry) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if e.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			e.ID = id
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		e.UpdatedAt = now
	}
	return nil
}

// RanksAhead reports whether a sorts before b under the queue ordering
// contract: priority desc, then created_at asc.
func RanksAhead(a, b WaitlistEntry) bool {
	if a.Priority.Rank() != b.Priority.Rank() {
		return a.Priority.Rank() < b.Priority.Rank()
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// MatchesSlotTime reports whether the entry can take a slot starting at
// slotTime (HH:mm). Flexible entries and entries without a preferred window
// match anything.
func (e WaitlistEntry) MatchesSlotTime(slotTime string) bool {
	if e.FlexibleTime || e.PreferredTimeStart == "" {
		return true
	}
	slot, err := ParseClock(slotTime)
	if err != nil {
		return false
	}
	start, err := ParseClock(e.PreferredTimeStart)
	if err != nil {
		return false
	}
	if slot < start {
		return false
	}
	if e.PreferredTimeEnd == "" {
		return true
	}
	end, err := ParseClock(e.PreferredTimeEnd)
	if err != nil {
		return false
	}
	return slot <= end
}

// ParseClock parses an HH:mm wall-clock string into minutes since midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q, want HH:mm", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time %q, want HH:mm", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q, want HH:mm", s)
	}
	return hour*60 + minute, nil
}

// ParseWeekday parses a lowercase weekday name ("sunday".."saturday").
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}
