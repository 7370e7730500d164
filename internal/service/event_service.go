package service

import (
	"context"
	"fmt"
	"ticket-waitlist/config"
	"ticket-waitlist/internal/cache"
	"ticket-waitlist/internal/metrics"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/internal/payment"
	"ticket-waitlist/internal/repository"
	"ticket-waitlist/pkg/apperrors"
	"ticket-waitlist/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EventService interface {
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, []*model.TicketType, error)
	// GetAvailability is a cached read projection and always returns a
	// well-formed (possibly empty) result.
	GetAvailability(ctx context.Context, eventID string, bypass bool) []model.TicketTypeAvailability
	SearchEvents(ctx context.Context, query string) []*model.Event
	// CancelEvent refunds every outstanding ticket and only then marks the
	// event cancelled. Any refund failure aborts; the operation is
	// retryable and never re-refunds.
	CancelEvent(ctx context.Context, eventID string) error
}

type EventServiceImpl struct {
	db           repository.DB
	eventRepo    repository.EventRepository
	ticketRepo   repository.TicketRepository
	waitlistRepo repository.WaitlistRepository
	provider     payment.Provider
	orchestrator *cache.Orchestrator
	cacheCfg     config.CacheConfig
	log          *zap.Logger
}

func NewEventService(
	db repository.DB,
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	waitlistRepo repository.WaitlistRepository,
	provider payment.Provider,
	orchestrator *cache.Orchestrator,
	cacheCfg config.CacheConfig,
) *EventServiceImpl {
	return &EventServiceImpl{
		db:           db,
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		waitlistRepo: waitlistRepo,
		provider:     provider,
		orchestrator: orchestrator,
		cacheCfg:     cacheCfg,
		log:          logger.WithComponent("service"),
	}
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, []*model.TicketType, error) {
	event := &model.Event{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Status: model.EventStatusActive,
	}

	ticketTypes := make([]*model.TicketType, 0, len(req.TicketTypes))
	for _, tt := range req.TicketTypes {
		ticketTypes = append(ticketTypes, &model.TicketType{
			ID:        uuid.NewString(),
			EventID:   event.ID,
			Name:      tt.Name,
			Price:     tt.Price,
			Quantity:  tt.Quantity,
			Remaining: tt.Quantity,
		})
	}

	event, err := s.eventRepo.Create(ctx, event, ticketTypes)
	if err != nil {
		return nil, nil, err
	}

	return event, ticketTypes, nil
}

func (s *EventServiceImpl) GetAvailability(ctx context.Context, eventID string, bypass bool) []model.TicketTypeAvailability {
	key := cache.AvailabilityKey(eventID)
	availability, err := cache.GetOrLoad(ctx, s.orchestrator, key, s.cacheCfg.AvailabilityTTL, bypass,
		func(ctx context.Context) ([]model.TicketTypeAvailability, error) {
			ticketTypes, err := s.eventRepo.ListTicketTypes(ctx, eventID)
			if err != nil {
				return nil, err
			}

			out := make([]model.TicketTypeAvailability, 0, len(ticketTypes))
			for _, tt := range ticketTypes {
				out = append(out, model.TicketTypeAvailability{
					TicketTypeID: tt.ID,
					Name:         tt.Name,
					Quantity:     tt.Quantity,
					Remaining:    tt.Remaining,
					IsSoldOut:    tt.IsSoldOut(),
				})
			}
			return out, nil
		},
	)
	if err != nil {
		s.log.Warn("availability lookup failed", zap.String("event_id", eventID), zap.Error(err))
		return []model.TicketTypeAvailability{}
	}

	return availability
}

func (s *EventServiceImpl) SearchEvents(ctx context.Context, query string) []*model.Event {
	key := cache.SearchKey(query)
	events, err := cache.GetOrLoad(ctx, s.orchestrator, key, s.cacheCfg.SearchTTL, false,
		func(ctx context.Context) ([]*model.Event, error) {
			return s.eventRepo.SearchByName(ctx, query)
		},
	)
	if err != nil {
		s.log.Warn("event search failed", zap.String("query", query), zap.Error(err))
		return []*model.Event{}
	}

	return events
}

func (s *EventServiceImpl) CancelEvent(ctx context.Context, eventID string) error {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.IsCancelled() {
		return nil
	}

	tickets, err := s.ticketRepo.ListRefundable(ctx, eventID)
	if err != nil {
		return err
	}

	// Refund first, cancel last. A single refund failure leaves the event
	// active so the whole operation can be retried; tickets already flipped
	// to refunded are not refunded again on retry.
	for _, ticket := range tickets {
		if err := s.provider.Refund(ctx, ticket.PaymentRef, ticket.Amount, ticket.Currency); err != nil {
			metrics.RefundsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("refund ticket %s: %w", ticket.ID, err)
		}
		metrics.RefundsTotal.WithLabelValues("ok").Inc()

		flipped, err := s.ticketRepo.UpdateStatusIf(ctx, ticket.ID,
			[]model.TicketStatus{model.TicketStatusValid, model.TicketStatusUsed},
			model.TicketStatusRefunded,
		)
		if err != nil {
			return fmt.Errorf("mark ticket %s refunded: %w", ticket.ID, err)
		}
		if !flipped {
			return fmt.Errorf("mark ticket %s refunded: %w", ticket.ID, apperrors.ErrInvalidTicketStatus)
		}
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cancelled, err := s.waitlistRepo.CancelActiveByEvent(ctx, tx, eventID)
	if err != nil {
		return err
	}

	if err := s.eventRepo.UpdateStatus(ctx, tx, eventID, model.EventStatusCancelled); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.log.Info("event cancelled",
		zap.String("event_id", eventID),
		zap.Int("tickets_refunded", len(tickets)),
		zap.Int("entries_cancelled", cancelled),
	)
	s.orchestrator.Invalidate(ctx, cache.AvailabilityKey(eventID))

	return nil
}
