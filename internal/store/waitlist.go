package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/YosefHayim/get-barber-sub001/internal/domain"
)

// WaitlistRepository persists waitlist entries. Status transitions that race
// with the expiry sweeper are conditional updates: they return matched=false
// when the entry was no longer in the expected state, which callers treat as
// losing the race, not as an error.
type WaitlistRepository interface {
	Create(ctx context.Context, entry domain.WaitlistEntry) (domain.WaitlistEntry, error)
	Get(ctx context.Context, id uuid.UUID) (domain.WaitlistEntry, error)
	Update(ctx context.Context, entry domain.WaitlistEntry) (domain.WaitlistEntry, error)

	// FindWaiting returns the waiting entry for (customerID, barberID), or
	// ErrNotFound.
	FindWaiting(ctx context.Context, customerID, barberID string) (domain.WaitlistEntry, error)

	// ListWaiting returns all waiting entries for the barber ordered by
	// priority desc, created_at asc.
	ListWaiting(ctx context.Context, barberID string) ([]domain.WaitlistEntry, error)

	// ListExpiredNotified returns notified entries whose offer deadline has
	// elapsed as of asOf.
	ListExpiredNotified(ctx context.Context, asOf time.Time) ([]domain.WaitlistEntry, error)

	// ClaimWaiting moves a waiting entry to notified, stamping the offer
	// window.
	ClaimWaiting(ctx context.Context, id uuid.UUID, notifiedAt, expiresAt time.Time) (bool, error)

	// AcceptNotified moves a notified entry to booked and links the booking.
	AcceptNotified(ctx context.Context, id uuid.UUID, bookingID uuid.UUID) (bool, error)

	// DeclineNotified moves a notified entry back to waiting, clearing the
	// offer window.
	DeclineNotified(ctx context.Context, id uuid.UUID) (bool, error)

	// RevertExpired moves a notified entry back to waiting only if its offer
	// deadline had elapsed as of asOf.
	RevertExpired(ctx context.Context, id uuid.UUID, asOf time.Time) (bool, error)
}
