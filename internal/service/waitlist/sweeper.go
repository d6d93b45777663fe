package waitlist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/YosefHayim/get-barber-sub001/internal/clock"
	"github.com/YosefHayim/get-barber-sub001/internal/store"
)

// Sweeper is the batch worker that reclaims unanswered slot offers, returning
// them to the waiting pool.
type Sweeper struct {
	repo  store.WaitlistRepository
	clock clock.Clock
	log   *slog.Logger
}

func NewSweeper(repo store.WaitlistRepository, clk clock.Clock, log *slog.Logger) *Sweeper {
	if clk == nil {
		clk = clock.System()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		repo:  repo,
		clock: clk,
		log:   log.With(slog.String("component", "waitlist.sweeper")),
	}
}

type SweepResult struct {
	Reverted []uuid.UUID `json:"reverted"`
	// Lost counts entries that were answered between the candidate query and
	// the conditional revert. Losing those races is expected.
	Lost int `json:"lost"`
}

// RunTick reverts every notified entry whose offer deadline has elapsed back
// to waiting. Each revert is a conditional update keyed on the notified state
// and the elapsed deadline, so a customer's last-second accept always wins.
func (s *Sweeper) RunTick(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now()

	expired, err := s.repo.ListExpiredNotified(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list expired offers: %w", err)
	}

	result := SweepResult{}
	for _, entry := range expired {
		matched, err := s.repo.RevertExpired(ctx, entry.ID, now)
		if err != nil {
			return result, fmt.Errorf("revert entry %s: %w", entry.ID, err)
		}
		if !matched {
			result.Lost++
			continue
		}
		result.Reverted = append(result.Reverted, entry.ID)
	}

	if len(expired) > 0 {
		s.log.Info("expiry sweep finished",
			slog.Int("expired", len(expired)),
			slog.Int("reverted", len(result.Reverted)),
			slog.Int("lost", result.Lost),
		)
	}
	return result, nil
}
