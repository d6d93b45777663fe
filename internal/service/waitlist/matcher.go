package waitlist

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/YosefHayim/get-barber-sub001/internal/clock"
	"github.com/YosefHayim/get-barber-sub001/internal/domain"
	"github.com/YosefHayim/get-barber-sub001/internal/notify"
	"github.com/YosefHayim/get-barber-sub001/internal/store"
)

const DefaultOfferExpiry = 30 * time.Minute

// Matcher offers freed slots to the best-ranked matching waitlist entry.
type Matcher struct {
	repo     store.WaitlistRepository
	notifier notify.Notifier
	clock    clock.Clock
	expiry   time.Duration
	log      *slog.Logger
}

func NewMatcher(repo store.WaitlistRepository, notifier notify.Notifier, clk clock.Clock, expiry time.Duration, log *slog.Logger) *Matcher {
	if clk == nil {
		clk = clock.System()
	}
	if expiry <= 0 {
		expiry = DefaultOfferExpiry
	}
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{
		repo:     repo,
		notifier: notifier,
		clock:    clk,
		expiry:   expiry,
		log:      log.With(slog.String("component", "waitlist.matcher")),
	}
}

// MatchSlot walks the barber's queue in rank order and notifies the first
// entry whose date and time preferences admit the freed slot. At most one
// entry is notified per call; nil means the slot stays unclaimed.
func (m *Matcher) MatchSlot(ctx context.Context, barberID string, slotDate time.Time, slotTime string) (*domain.WaitlistEntry, error) {
	if barberID == "" {
		return nil, validationError("barber_id is required")
	}
	if _, err := domain.ParseClock(slotTime); err != nil {
		return nil, validationError("slot time must be HH:mm")
	}
	date := domain.DateOnly(slotDate)

	waiting, err := m.repo.ListWaiting(ctx, barberID)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	expiresAt := now.Add(m.expiry)

	for _, entry := range waiting {
		if !entry.FlexibleDate && !domain.DateOnly(entry.PreferredDate).Equal(date) {
			continue
		}
		if !entry.MatchesSlotTime(slotTime) {
			continue
		}

		claimed, err := m.repo.ClaimWaiting(ctx, entry.ID, now, expiresAt)
		if err != nil {
			return nil, err
		}
		if !claimed {
			// Lost a race for this entry; it is no longer waiting.
			continue
		}

		entry.Status = domain.WaitlistStatusNotified
		entry.NotifiedAt = &now
		entry.ExpiresAt = &expiresAt
		m.notifyOffer(ctx, entry, date, slotTime, expiresAt)
		return &entry, nil
	}

	return nil, nil
}

// AcceptOffer books the offered slot. The transition is conditional on the
// entry still being notified, so an accept that lost to the expiry sweep
// fails cleanly instead of resurrecting the offer.
func (m *Matcher) AcceptOffer(ctx context.Context, entryID uuid.UUID, bookingID uuid.UUID) (domain.WaitlistEntry, error) {
	if bookingID == uuid.Nil {
		return domain.WaitlistEntry{}, validationError("booking_id is required")
	}

	matched, err := m.repo.AcceptNotified(ctx, entryID, bookingID)
	if err != nil {
		return domain.WaitlistEntry{}, err
	}
	if !matched {
		if _, err := m.repo.Get(ctx, entryID); err != nil {
			return domain.WaitlistEntry{}, err
		}
		return domain.WaitlistEntry{}, validationError("offer is no longer active")
	}
	return m.repo.Get(ctx, entryID)
}

// DeclineOffer returns the entry to the queue. Its priority and join time are
// unchanged, so it re-enters at its original rank.
func (m *Matcher) DeclineOffer(ctx context.Context, entryID uuid.UUID) (domain.WaitlistEntry, error) {
	matched, err := m.repo.DeclineNotified(ctx, entryID)
	if err != nil {
		return domain.WaitlistEntry{}, err
	}
	if !matched {
		if _, err := m.repo.Get(ctx, entryID); err != nil {
			return domain.WaitlistEntry{}, err
		}
		return domain.WaitlistEntry{}, validationError("offer is no longer active")
	}
	return m.repo.Get(ctx, entryID)
}

func (m *Matcher) notifyOffer(ctx context.Context, entry domain.WaitlistEntry, date time.Time, slotTime string, expiresAt time.Time) {
	if m.notifier == nil {
		return
	}
	err := m.notifier.Notify(ctx, notify.Notification{
		UserID:  entry.CustomerID,
		Event:   notify.EventWaitlistOffer,
		Message: "A slot opened up with your barber. Respond before the offer expires.",
		Payload: map[string]any{
			"entry_id":   entry.ID.String(),
			"barber_id":  entry.BarberID,
			"date":       date,
			"start_time": slotTime,
			"expires_at": expiresAt,
		},
	})
	if err != nil {
		m.log.Warn("offer notification failed",
			slog.String("entry_id", entry.ID.String()),
			slog.Any("err", err),
		)
	}
}
