package jobs

import (
	"context"
	"ticket-waitlist/internal/cache"
	"ticket-waitlist/internal/metrics"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/internal/repository"
	"ticket-waitlist/pkg/logger"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Summary is what a job run reports back to its scheduler.
type Summary struct {
	Scanned   int `json:"scanned"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Sweeper reclaims inventory from expired offers. It is a stateless batch
// function meant to be invoked on an interval by an external scheduler; each
// run processes at most one batch and returns.
type Sweeper struct {
	db           repository.DB
	waitlistRepo repository.WaitlistRepository
	eventRepo    repository.EventRepository
	orchestrator *cache.Orchestrator
	log          *zap.Logger
}

func NewSweeper(
	db repository.DB,
	waitlistRepo repository.WaitlistRepository,
	eventRepo repository.EventRepository,
	orchestrator *cache.Orchestrator,
) *Sweeper {
	return &Sweeper{
		db:           db,
		waitlistRepo: waitlistRepo,
		eventRepo:    eventRepo,
		orchestrator: orchestrator,
		log:          logger.WithComponent("jobs"),
	}
}

// Run expires offered entries whose payment window closed before now and
// credits their quantity back to the ledger, capped at the total. Each entry
// is handled in its own transaction guarded by a compare-and-set on the
// status, so running twice (or concurrently with the promoter) cannot credit
// inventory twice. One bad entry does not abort the batch.
func (s *Sweeper) Run(ctx context.Context, now time.Time, limit int) (Summary, error) {
	start := time.Now()
	defer func() {
		metrics.JobDuration.WithLabelValues("sweeper").Observe(time.Since(start).Seconds())
	}()

	var summary Summary

	entries, err := s.waitlistRepo.ListExpiredOffers(ctx, now, limit)
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(entries)

	for _, entry := range entries {
		flipped, err := s.expireEntry(ctx, entry)
		if err != nil {
			summary.Errors++
			s.log.Warn("failed to expire offer",
				zap.String("entry_id", entry.ID), zap.Error(err))
			continue
		}
		if !flipped {
			summary.Skipped++
			continue
		}
		summary.Processed++
		metrics.ExpirationsTotal.Inc()
		s.orchestrator.Invalidate(ctx, cache.AvailabilityKey(entry.EventID))
		s.orchestrator.Invalidate(ctx, cache.QueuePositionKey(entry.EventID, entry.UserID))
	}

	if summary.Processed > 0 {
		s.log.Info("sweep complete",
			zap.Int("scanned", summary.Scanned),
			zap.Int("expired", summary.Processed),
			zap.Int("errors", summary.Errors),
		)
	}

	return summary, nil
}

func (s *Sweeper) expireEntry(ctx context.Context, entry *model.WaitingListEntry) (bool, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	flipped, err := s.waitlistRepo.UpdateStatusIf(ctx, tx, entry.ID,
		model.EntryStatusOffered, model.EntryStatusExpired)
	if err != nil {
		return false, err
	}
	if !flipped {
		// Someone got here first: a purchase, a cancellation or a
		// concurrent sweep. Nothing to credit.
		return false, nil
	}

	if err := s.eventRepo.CreditRemaining(ctx, tx, entry.TicketTypeID, entry.Quantity); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	return true, nil
}
