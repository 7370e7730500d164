package service

import (
	"context"
	"errors"
	"ticket-waitlist/config"
	"ticket-waitlist/internal/cache"
	"ticket-waitlist/internal/metrics"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/internal/repository"
	"ticket-waitlist/pkg/apperrors"
	"ticket-waitlist/pkg/logger"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type WaitlistService interface {
	// Join creates a claim on a ticket type. With free capacity and no
	// queue the entry is offered on the spot.
	Join(ctx context.Context, userID string, req model.JoinRequest) (*model.WaitingListEntry, error)
	// CancelEntry releases a user's active claim, returning held inventory
	// if the entry was offered.
	CancelEntry(ctx context.Context, userID, entryID string) (*model.WaitingListEntry, error)
	// GetQueuePosition is a cached read projection and never fails the
	// caller: degraded results carry an "unknown" status.
	GetQueuePosition(ctx context.Context, eventID, userID string) *model.QueuePosition
}

type WaitlistServiceImpl struct {
	db           repository.DB
	waitlistRepo repository.WaitlistRepository
	eventRepo    repository.EventRepository
	orchestrator *cache.Orchestrator
	cacheCfg     config.CacheConfig
	offerWindow  time.Duration
	now          func() time.Time
	log          *zap.Logger
}

func NewWaitlistService(
	db repository.DB,
	waitlistRepo repository.WaitlistRepository,
	eventRepo repository.EventRepository,
	orchestrator *cache.Orchestrator,
	cacheCfg config.CacheConfig,
	admissionCfg config.AdmissionConfig,
) *WaitlistServiceImpl {
	return &WaitlistServiceImpl{
		db:           db,
		waitlistRepo: waitlistRepo,
		eventRepo:    eventRepo,
		orchestrator: orchestrator,
		cacheCfg:     cacheCfg,
		offerWindow:  admissionCfg.OfferWindow,
		now:          time.Now,
		log:          logger.WithComponent("service"),
	}
}

// Join decides between three outcomes inside a single transaction holding
// the ticket-type row lock, so concurrent joins cannot both read stale
// remaining and oversubscribe:
//
//   - empty queue and remaining >= quantity: offered immediately, inventory
//     decremented now (the documented bypass-the-line policy);
//   - a queue exists, or some but not enough capacity remains: waiting
//     (joining behind an existing queue keeps promotion strictly FIFO);
//   - otherwise: capacity error, no entry is created.
func (s *WaitlistServiceImpl) Join(ctx context.Context, userID string, req model.JoinRequest) (*model.WaitingListEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrMissingUserID
	}
	if req.Quantity < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	event, err := s.eventRepo.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event.IsCancelled() {
		return nil, apperrors.ErrEventCancelled
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	active, err := s.waitlistRepo.HasActive(ctx, tx, req.EventID, req.TicketTypeID, userID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, apperrors.ErrAlreadyInWaitlist
	}

	ticketType, err := s.eventRepo.FindTicketTypeForUpdate(ctx, tx, req.TicketTypeID)
	if err != nil {
		return nil, err
	}
	if ticketType.EventID != req.EventID {
		return nil, apperrors.ErrTicketTypeNotFound
	}

	waitingCount, err := s.waitlistRepo.CountWaiting(ctx, tx, req.TicketTypeID)
	if err != nil {
		return nil, err
	}

	entry := &model.WaitingListEntry{
		ID:           uuid.NewString(),
		EventID:      req.EventID,
		UserID:       userID,
		TicketTypeID: req.TicketTypeID,
		Quantity:     req.Quantity,
	}

	switch {
	case waitingCount == 0 && ticketType.Remaining >= req.Quantity:
		expiresAt := s.now().Add(s.offerWindow)
		entry.Status = model.EntryStatusOffered
		entry.OfferExpiresAt = &expiresAt
		if err := s.eventRepo.DecrementRemaining(ctx, tx, req.TicketTypeID, req.Quantity); err != nil {
			return nil, err
		}
	case waitingCount > 0 || ticketType.Remaining > 0:
		entry.Status = model.EntryStatusWaiting
	default:
		metrics.JoinsTotal.WithLabelValues("capacity_error").Inc()
		return nil, apperrors.ErrInsufficientCapacity
	}

	if _, err := s.waitlistRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.JoinsTotal.WithLabelValues(string(entry.Status)).Inc()
	s.orchestrator.Invalidate(ctx, cache.AvailabilityKey(req.EventID))
	s.orchestrator.Invalidate(ctx, cache.QueuePositionKey(req.EventID, userID))

	return entry, nil
}

func (s *WaitlistServiceImpl) CancelEntry(ctx context.Context, userID, entryID string) (*model.WaitingListEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrMissingUserID
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := s.waitlistRepo.FindByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		// Do not reveal other users' entries.
		return nil, apperrors.ErrEntryNotFound
	}
	if !entry.Status.IsActive() {
		return nil, apperrors.ErrInvalidEntryStatus
	}

	flipped, err := s.waitlistRepo.UpdateStatusIf(ctx, tx, entryID, entry.Status, model.EntryStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, apperrors.ErrInvalidEntryStatus
	}

	if entry.Status == model.EntryStatusOffered {
		if err := s.eventRepo.CreditRemaining(ctx, tx, entry.TicketTypeID, entry.Quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	entry.Status = model.EntryStatusCancelled
	s.orchestrator.Invalidate(ctx, cache.AvailabilityKey(entry.EventID))
	s.orchestrator.Invalidate(ctx, cache.QueuePositionKey(entry.EventID, userID))

	return entry, nil
}

// GetQueuePosition is the hot polled read. It is served stale-while-
// revalidate: impatient pollers get a slightly old rank instead of hammering
// the ledger, and cache failures degrade to a direct read rather than an
// error.
func (s *WaitlistServiceImpl) GetQueuePosition(ctx context.Context, eventID, userID string) *model.QueuePosition {
	if userID == "" {
		return &model.QueuePosition{Status: model.PositionStatusNotInQueue}
	}

	key := cache.QueuePositionKey(eventID, userID)
	pos, err := cache.GetOrLoadStale(ctx, s.orchestrator, key,
		s.cacheCfg.QueuePositionFresh, s.cacheCfg.QueuePositionStale,
		func(ctx context.Context) (*model.QueuePosition, error) {
			return s.loadQueuePosition(ctx, eventID, userID)
		},
	)
	if err != nil {
		s.log.Warn("queue position lookup failed",
			zap.String("event_id", eventID), zap.String("user_id", userID), zap.Error(err))
		return &model.QueuePosition{Status: model.PositionStatusUnknown}
	}

	return pos
}

func (s *WaitlistServiceImpl) loadQueuePosition(ctx context.Context, eventID, userID string) (*model.QueuePosition, error) {
	entry, err := s.waitlistRepo.FindCurrentByUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEntryNotFound) {
			return &model.QueuePosition{Status: model.PositionStatusNotInQueue}, nil
		}
		return nil, err
	}

	switch entry.Status {
	case model.EntryStatusOffered:
		return &model.QueuePosition{
			Status:         model.PositionStatusOffered,
			OfferExpiresAt: entry.OfferExpiresAt,
		}, nil
	case model.EntryStatusPurchased:
		return &model.QueuePosition{Status: model.PositionStatusPurchased}, nil
	}

	ahead, err := s.waitlistRepo.WaitingAhead(ctx, entry)
	if err != nil {
		return nil, err
	}

	// Worst-case estimate: everyone ahead uses their full payment window.
	return &model.QueuePosition{
		Status:               model.PositionStatusWaiting,
		Position:             ahead + 1,
		PeopleAhead:          ahead,
		EstimatedWaitSeconds: int64(ahead) * int64(s.offerWindow/time.Second),
	}, nil
}
