package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/YosefHayim/get-barber-sub001/internal/clock"
	"github.com/YosefHayim/get-barber-sub001/internal/domain"
	"github.com/YosefHayim/get-barber-sub001/internal/notify"
	"github.com/YosefHayim/get-barber-sub001/internal/store"
)

func TestMatchSlot_FlexibleDateBeatsMismatchedDate(t *testing.T) {
	repo := newFakeWaitlistRepo()
	svc := NewService(repo, nil)
	notifier := &recordingNotifier{}
	matcher := NewMatcher(repo, notifier, clock.NewFake(date(2024, 2, 1)), 0, nil)

	// A wants a different date and is not flexible; B takes anything.
	inA := joinInput("cust-a")
	inA.PreferredDate = date(2024, 2, 2)
	a, _, err := svc.Join(context.Background(), inA)
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}
	inB := joinInput("cust-b")
	inB.PreferredDate = time.Time{}
	inB.FlexibleDate = true
	b, _, err := svc.Join(context.Background(), inB)
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}

	matched, err := matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "10:00")
	if err != nil {
		t.Fatalf("MatchSlot error: %v", err)
	}
	if matched == nil || matched.ID != b.ID {
		t.Fatalf("matched = %v, want %s", matched, b.ID)
	}
	if matched.Status != domain.WaitlistStatusNotified {
		t.Fatalf("status = %s, want notified", matched.Status)
	}

	gotA, _ := repo.Get(context.Background(), a.ID)
	if gotA.Status != domain.WaitlistStatusWaiting {
		t.Fatalf("entry a status = %s, want waiting", gotA.Status)
	}
	if notifier.count() != 1 {
		t.Fatalf("notifications = %d, want 1", notifier.count())
	}
}

func TestMatchSlot_NotifiesAtMostOne(t *testing.T) {
	repo := newFakeWaitlistRepo()
	svc := NewService(repo, nil)
	matcher := NewMatcher(repo, &recordingNotifier{}, clock.NewFake(date(2024, 2, 1)), 0, nil)

	for _, customer := range []string{"cust-a", "cust-b", "cust-c"} {
		if _, _, err := svc.Join(context.Background(), joinInput(customer)); err != nil {
			t.Fatalf("Join error: %v", err)
		}
	}

	matched, err := matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "10:00")
	if err != nil {
		t.Fatalf("MatchSlot error: %v", err)
	}
	if matched == nil {
		t.Fatalf("expected a match")
	}

	notified := 0
	for _, customer := range []string{"cust-a", "cust-b", "cust-c"} {
		entry, err := repo.FindWaiting(context.Background(), customer, "barber-1")
		if errors.Is(err, store.ErrNotFound) {
			notified++
			continue
		}
		if err != nil {
			t.Fatalf("FindWaiting error: %v", err)
		}
		if entry.Status != domain.WaitlistStatusWaiting {
			t.Fatalf("unexpected status %s", entry.Status)
		}
	}
	if notified != 1 {
		t.Fatalf("notified entries = %d, want exactly 1", notified)
	}
}

func TestMatchSlot_HonorsQueueOrder(t *testing.T) {
	repo := newFakeWaitlistRepo()
	svc := NewService(repo, nil)
	matcher := NewMatcher(repo, &recordingNotifier{}, clock.NewFake(date(2024, 2, 1)), 0, nil)

	if _, _, err := svc.Join(context.Background(), joinInput("cust-normal")); err != nil {
		t.Fatalf("Join error: %v", err)
	}
	inVIP := joinInput("cust-vip")
	inVIP.Priority = domain.PriorityVIP
	vip, _, err := svc.Join(context.Background(), inVIP)
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}

	matched, err := matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "10:00")
	if err != nil {
		t.Fatalf("MatchSlot error: %v", err)
	}
	if matched == nil || matched.ID != vip.ID {
		t.Fatalf("matched = %v, want vip entry %s", matched, vip.ID)
	}
}

func TestMatchSlot_TimeWindowExcludes(t *testing.T) {
	repo := newFakeWaitlistRepo()
	svc := NewService(repo, nil)
	matcher := NewMatcher(repo, &recordingNotifier{}, clock.NewFake(date(2024, 2, 1)), 0, nil)

	in := joinInput("cust-1")
	in.PreferredTimeStart = "14:00"
	in.PreferredTimeEnd = "16:00"
	if _, _, err := svc.Join(context.Background(), in); err != nil {
		t.Fatalf("Join error: %v", err)
	}

	matched, err := matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "10:00")
	if err != nil {
		t.Fatalf("MatchSlot error: %v", err)
	}
	if matched != nil {
		t.Fatalf("matched = %v, want none", matched)
	}

	matched, err = matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "15:00")
	if err != nil {
		t.Fatalf("MatchSlot error: %v", err)
	}
	if matched == nil {
		t.Fatalf("expected a match for an in-window slot")
	}
}

func TestMatchSlot_EmptyQueueReturnsNone(t *testing.T) {
	matcher := NewMatcher(newFakeWaitlistRepo(), &recordingNotifier{}, nil, 0, nil)
	matched, err := matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "10:00")
	if err != nil {
		t.Fatalf("MatchSlot error: %v", err)
	}
	if matched != nil {
		t.Fatalf("matched = %v, want none", matched)
	}
}

func TestMatchSlot_StampsOfferWindow(t *testing.T) {
	repo := newFakeWaitlistRepo()
	svc := NewService(repo, nil)
	clk := clock.NewFake(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	matcher := NewMatcher(repo, &recordingNotifier{}, clk, 45*time.Minute, nil)

	if _, _, err := svc.Join(context.Background(), joinInput("cust-1")); err != nil {
		t.Fatalf("Join error: %v", err)
	}

	matched, err := matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "10:00")
	if err != nil {
		t.Fatalf("MatchSlot error: %v", err)
	}
	if matched == nil || matched.NotifiedAt == nil || matched.ExpiresAt == nil {
		t.Fatalf("matched = %+v, want stamped offer window", matched)
	}
	if !matched.NotifiedAt.Equal(clk.Now()) {
		t.Fatalf("notified_at = %v, want %v", matched.NotifiedAt, clk.Now())
	}
	if !matched.ExpiresAt.Equal(clk.Now().Add(45 * time.Minute)) {
		t.Fatalf("expires_at = %v, want now+45m", matched.ExpiresAt)
	}
}

func TestAcceptOffer_LinksBooking(t *testing.T) {
	repo := newFakeWaitlistRepo()
	svc := NewService(repo, nil)
	matcher := NewMatcher(repo, &recordingNotifier{}, clock.NewFake(date(2024, 2, 1)), 0, nil)

	if _, _, err := svc.Join(context.Background(), joinInput("cust-1")); err != nil {
		t.Fatalf("Join error: %v", err)
	}
	matched, err := matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "10:00")
	if err != nil || matched == nil {
		t.Fatalf("MatchSlot = %v, %v", matched, err)
	}

	bookingID := uuid.New()
	accepted, err := matcher.AcceptOffer(context.Background(), matched.ID, bookingID)
	if err != nil {
		t.Fatalf("AcceptOffer error: %v", err)
	}
	if accepted.Status != domain.WaitlistStatusBooked {
		t.Fatalf("status = %s, want booked", accepted.Status)
	}
	if accepted.BookingID == nil || *accepted.BookingID != bookingID {
		t.Fatalf("booking_id = %v, want %s", accepted.BookingID, bookingID)
	}
}

func TestAcceptOffer_NotNotifiedRejected(t *testing.T) {
	repo := newFakeWaitlistRepo()
	svc := NewService(repo, nil)
	matcher := NewMatcher(repo, &recordingNotifier{}, nil, 0, nil)

	entry, _, err := svc.Join(context.Background(), joinInput("cust-1"))
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}

	_, err = matcher.AcceptOffer(context.Background(), entry.ID, uuid.New())
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
}

func TestDeclineOffer_RetainsOriginalRank(t *testing.T) {
	repo := newFakeWaitlistRepo()
	svc := NewService(repo, nil)
	matcher := NewMatcher(repo, &recordingNotifier{}, clock.NewFake(date(2024, 2, 1)), 0, nil)

	first, _, err := svc.Join(context.Background(), joinInput("cust-first"))
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}
	if _, _, err := svc.Join(context.Background(), joinInput("cust-second")); err != nil {
		t.Fatalf("Join error: %v", err)
	}

	matched, err := matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "10:00")
	if err != nil || matched == nil || matched.ID != first.ID {
		t.Fatalf("MatchSlot = %v, %v; want first entry", matched, err)
	}

	declined, err := matcher.DeclineOffer(context.Background(), matched.ID)
	if err != nil {
		t.Fatalf("DeclineOffer error: %v", err)
	}
	if declined.Status != domain.WaitlistStatusWaiting {
		t.Fatalf("status = %s, want waiting", declined.Status)
	}
	if declined.NotifiedAt != nil || declined.ExpiresAt != nil {
		t.Fatalf("offer window must be cleared on decline")
	}

	// The decline re-enters the queue at the original createdAt rank, so the
	// entry is first again, not last.
	if got, _ := svc.Position(context.Background(), first.ID); got != 1 {
		t.Fatalf("position = %d, want 1", got)
	}
}

func TestMatcher_NotifierFailureDoesNotUndoClaim(t *testing.T) {
	repo := newFakeWaitlistRepo()
	svc := NewService(repo, nil)
	failing := failingNotifier{}
	matcher := NewMatcher(repo, failing, clock.NewFake(date(2024, 2, 1)), 0, nil)

	entry, _, err := svc.Join(context.Background(), joinInput("cust-1"))
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}

	matched, err := matcher.MatchSlot(context.Background(), "barber-1", date(2024, 2, 1), "10:00")
	if err != nil {
		t.Fatalf("MatchSlot error: %v", err)
	}
	if matched == nil || matched.ID != entry.ID {
		t.Fatalf("matched = %v, want %s", matched, entry.ID)
	}

	got, _ := repo.Get(context.Background(), entry.ID)
	if got.Status != domain.WaitlistStatusNotified {
		t.Fatalf("status = %s, want notified despite notifier failure", got.Status)
	}
}

type failingNotifier struct{}

func (failingNotifier) Notify(ctx context.Context, msg notify.Notification) error {
	return errors.New("push gateway unreachable")
}
