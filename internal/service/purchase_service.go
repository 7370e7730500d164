package service

import (
	"context"
	"ticket-waitlist/internal/metrics"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/internal/payment"
	"ticket-waitlist/internal/repository"
	"ticket-waitlist/pkg/apperrors"
	"ticket-waitlist/pkg/logger"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PurchaseService interface {
	// Finalize turns a confirmed payment into tickets: one ticket per unit
	// of the entry's quantity, and the entry flips to purchased. Inventory
	// is untouched here; it was decremented when the offer was made.
	Finalize(ctx context.Context, ev payment.ConfirmationEvent) ([]*model.Ticket, error)
}

type PurchaseServiceImpl struct {
	db           repository.DB
	waitlistRepo repository.WaitlistRepository
	eventRepo    repository.EventRepository
	ticketRepo   repository.TicketRepository
	now          func() time.Time
	log          *zap.Logger
}

func NewPurchaseService(
	db repository.DB,
	waitlistRepo repository.WaitlistRepository,
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		db:           db,
		waitlistRepo: waitlistRepo,
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		now:          time.Now,
		log:          logger.WithComponent("service"),
	}
}

func (s *PurchaseServiceImpl) Finalize(ctx context.Context, ev payment.ConfirmationEvent) ([]*model.Ticket, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := s.waitlistRepo.FindByIDForUpdate(ctx, tx, ev.WaitlistEntryID)
	if err != nil {
		return nil, err
	}

	// Webhook deliveries get retried; a confirmation for an entry that is
	// already purchased is acknowledged, not failed.
	if entry.Status == model.EntryStatusPurchased {
		s.log.Info("duplicate payment confirmation",
			zap.String("entry_id", entry.ID), zap.String("reference", ev.Reference))
		return nil, nil
	}

	if entry.Status != model.EntryStatusOffered {
		return nil, apperrors.ErrInvalidEntryStatus
	}

	// A payment that lands after the sweeper reclaimed the offer loses the
	// race: the inventory is gone.
	if entry.OfferExpired(s.now()) {
		return nil, apperrors.ErrOfferExpired
	}

	ticketType, err := s.eventRepo.FindTicketTypeByID(ctx, entry.TicketTypeID)
	if err != nil {
		return nil, err
	}

	flipped, err := s.waitlistRepo.UpdateStatusIf(ctx, tx, entry.ID,
		model.EntryStatusOffered, model.EntryStatusPurchased)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, apperrors.ErrInvalidEntryStatus
	}

	purchasedAt := s.now()
	tickets := make([]*model.Ticket, 0, entry.Quantity)
	for i := 0; i < entry.Quantity; i++ {
		tickets = append(tickets, &model.Ticket{
			ID:              uuid.NewString(),
			EventID:         entry.EventID,
			UserID:          entry.UserID,
			TicketTypeID:    entry.TicketTypeID,
			WaitlistEntryID: entry.ID,
			Status:          model.TicketStatusValid,
			PurchasedAt:     purchasedAt,
			Amount:          ticketType.Price,
			Currency:        ev.Currency,
			PaymentRef:      ev.Reference,
		})
	}

	if err := s.ticketRepo.CreateBatch(ctx, tx, tickets); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.PurchasesTotal.Inc()
	s.log.Info("purchase finalized",
		zap.String("entry_id", entry.ID),
		zap.String("reference", ev.Reference),
		zap.Int("tickets", len(tickets)),
	)

	return tickets, nil
}
