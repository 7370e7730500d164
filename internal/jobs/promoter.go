package jobs

import (
	"context"
	"ticket-waitlist/internal/cache"
	"ticket-waitlist/internal/metrics"
	"ticket-waitlist/internal/repository"
	"ticket-waitlist/pkg/logger"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Promoter advances waiting entries into offers wherever capacity has freed
// up. Like the sweeper it is a stateless batch function for an external
// scheduler.
type Promoter struct {
	db           repository.DB
	waitlistRepo repository.WaitlistRepository
	eventRepo    repository.EventRepository
	orchestrator *cache.Orchestrator
	offerWindow  time.Duration
	log          *zap.Logger
}

func NewPromoter(
	db repository.DB,
	waitlistRepo repository.WaitlistRepository,
	eventRepo repository.EventRepository,
	orchestrator *cache.Orchestrator,
	offerWindow time.Duration,
) *Promoter {
	return &Promoter{
		db:           db,
		waitlistRepo: waitlistRepo,
		eventRepo:    eventRepo,
		orchestrator: orchestrator,
		offerWindow:  offerWindow,
		log:          logger.WithComponent("jobs"),
	}
}

// Run promotes strictly FIFO per ticket type: waiting entries in creation
// order, each decrementing remaining at offer time so the same units can
// never be offered twice. An entry wanting more than the current remaining
// is left waiting and the scan continues; a failing ticket type is logged
// and skipped rather than aborting the batch.
func (p *Promoter) Run(ctx context.Context, now time.Time, limit int) (Summary, error) {
	start := time.Now()
	defer func() {
		metrics.JobDuration.WithLabelValues("promoter").Observe(time.Since(start).Seconds())
	}()

	var summary Summary

	ticketTypeIDs, err := p.waitlistRepo.ListPromotableTicketTypes(ctx)
	if err != nil {
		return summary, err
	}

	for _, ticketTypeID := range ticketTypeIDs {
		if summary.Scanned >= limit {
			break
		}

		sub, err := p.promoteTicketType(ctx, ticketTypeID, now, limit-summary.Scanned)
		summary.Scanned += sub.Scanned
		summary.Processed += sub.Processed
		summary.Skipped += sub.Skipped
		if err != nil {
			summary.Errors++
			p.log.Warn("promotion failed for ticket type",
				zap.String("ticket_type_id", ticketTypeID), zap.Error(err))
		}
	}

	if summary.Processed > 0 {
		p.log.Info("promotion complete",
			zap.Int("scanned", summary.Scanned),
			zap.Int("promoted", summary.Processed),
			zap.Int("skipped", summary.Skipped),
			zap.Int("errors", summary.Errors),
		)
	}

	return summary, nil
}

func (p *Promoter) promoteTicketType(ctx context.Context, ticketTypeID string, now time.Time, limit int) (Summary, error) {
	var sub Summary

	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return sub, err
	}
	defer tx.Rollback(ctx)

	ticketType, err := p.eventRepo.FindTicketTypeForUpdate(ctx, tx, ticketTypeID)
	if err != nil {
		return sub, err
	}

	entries, err := p.waitlistRepo.ListWaitingFIFO(ctx, tx, ticketTypeID, limit)
	if err != nil {
		return sub, err
	}

	remaining := ticketType.Remaining
	expiresAt := now.Add(p.offerWindow)
	eventID := ticketType.EventID
	promotedUsers := make([]string, 0)

	for _, entry := range entries {
		sub.Scanned++

		if entry.Quantity > remaining {
			sub.Skipped++
			continue
		}

		flipped, err := p.waitlistRepo.MarkOffered(ctx, tx, entry.ID, expiresAt)
		if err != nil {
			return sub, err
		}
		if !flipped {
			sub.Skipped++
			continue
		}

		if err := p.eventRepo.DecrementRemaining(ctx, tx, ticketTypeID, entry.Quantity); err != nil {
			return sub, err
		}

		remaining -= entry.Quantity
		sub.Processed++
		promotedUsers = append(promotedUsers, entry.UserID)

		if remaining == 0 {
			break
		}
	}

	if sub.Processed == 0 {
		// Nothing flipped; no reason to commit or invalidate.
		return sub, nil
	}

	if err := tx.Commit(ctx); err != nil {
		sub.Processed = 0
		return sub, err
	}

	metrics.PromotionsTotal.Add(float64(sub.Processed))
	p.orchestrator.Invalidate(ctx, cache.AvailabilityKey(eventID))
	for _, userID := range promotedUsers {
		p.orchestrator.Invalidate(ctx, cache.QueuePositionKey(eventID, userID))
	}

	return sub, nil
}
