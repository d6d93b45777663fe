package waitlist

import (
	"context"
	"errors"
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

// Service owns the waitlist queue: joining, leaving and derived positions.
type Service struct {
	repo  store.WaitlistRepository
	clock clock.Clock
}

func NewService(repo store.WaitlistRepository, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{repo: repo, clock: clk}
}

type JoinInput struct {
	CustomerID         string
	BarberID           string
	ServiceID          string
	PreferredDate      time.Time
	PreferredTimeStart string
	PreferredTimeEnd   string
	FlexibleDate       bool
	FlexibleTime       bool
	Priority           domain.Priority
}

// Join adds the customer to the barber's queue. A customer can hold at most
// one waiting entry per barber; a second join is rejected before any write.
func (s *Service) Join(ctx context.Context, in JoinInput) (domain.WaitlistEntry, int, error) {
	if in.CustomerID == "" {
		return domain.WaitlistEntry{}, 0, validationError("customer_id is required")
	}
	if in.BarberID == "" {
		return domain.WaitlistEntry{}, 0, validationError("barber_id is required")
	}
	if in.PreferredDate.IsZero() && !in.FlexibleDate {
		return domain.WaitlistEntry{}, 0, validationError("preferred_date is required unless flexible_date is set")
	}

	timeStart := strings.TrimSpace(in.PreferredTimeStart)
	timeEnd := strings.TrimSpace(in.PreferredTimeEnd)
	if timeStart != "" {
		if _, err := domain.ParseClock(timeStart); err != nil {
			return domain.WaitlistEntry{}, 0, validationError("preferred_time_start must be HH:mm")
		}
	}
	if timeEnd != "" {
		if timeStart == "" {
			return domain.WaitlistEntry{}, 0, validationError("preferred_time_end requires preferred_time_start")
		}
		if _, err := domain.ParseClock(timeEnd); err != nil {
			return domain.WaitlistEntry{}, 0, validationError("preferred_time_end must be HH:mm")
		}
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !priority.Valid() {
		return domain.WaitlistEntry{}, 0, validationError("unsupported priority")
	}

	_, err := s.repo.FindWaiting(ctx, in.CustomerID, in.BarberID)
	if err == nil {
		return domain.WaitlistEntry{}, 0, store.ErrDuplicateWaitlist
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.WaitlistEntry{}, 0, err
	}

	entry := domain.WaitlistEntry{
		CustomerID:         in.CustomerID,
		BarberID:           in.BarberID,
		ServiceID:          in.ServiceID,
		PreferredDate:      domain.DateOnly(in.PreferredDate),
		PreferredTimeStart: timeStart,
		PreferredTimeEnd:   timeEnd,
		FlexibleDate:       in.FlexibleDate,
		FlexibleTime:       in.FlexibleTime,
		Priority:           priority,
		Status:             domain.WaitlistStatusWaiting,
	}

	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return domain.WaitlistEntry{}, 0, err
	}

	position, err := s.positionOf(ctx, created)
	if err != nil {
		return created, 0, err
	}
	return created, position, nil
}

// Leave cancels the entry. Booked and already-cancelled entries cannot leave.
func (s *Service) Leave(ctx context.Context, entryID uuid.UUID) (domain.WaitlistEntry, error) {
	entry, err := s.repo.Get(ctx, entryID)
	if err != nil {
		return domain.WaitlistEntry{}, err
	}
	if entry.Status != domain.WaitlistStatusWaiting && entry.Status != domain.WaitlistStatusNotified {
		return domain.WaitlistEntry{}, validationError("waitlist entry is not active")
	}

	entry.Status = domain.WaitlistStatusCancelled
	entry.NotifiedAt = nil
	entry.ExpiresAt = nil
	return s.repo.Update(ctx, entry)
}

// Position returns the entry's 1-based rank among the barber's waiting
// entries. The value is always derived from the ordering contract, never read
// from storage, so removals ahead of the entry are reflected immediately.
func (s *Service) Position(ctx context.Context, entryID uuid.UUID) (int, error) {
	entry, err := s.repo.Get(ctx, entryID)
	if err != nil {
		return 0, err
	}
	if entry.Status != domain.WaitlistStatusWaiting {
		return 0, validationError("waitlist entry is not waiting")
	}
	return s.positionOf(ctx, entry)
}

func (s *Service) positionOf(ctx context.Context, entry domain.WaitlistEntry) (int, error) {
	waiting, err := s.repo.ListWaiting(ctx, entry.BarberID)
	if err != nil {
		return 0, err
	}

	position := 1
	for _, other := range waiting {
		if other.ID == entry.ID {
			continue
		}
		if domain.RanksAhead(other, entry) {
			position++
		}
	}
	return position, nil
}
