package service

import (
	"context"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/internal/repository"
	"ticket-waitlist/pkg/apperrors"
)

type TicketService interface {
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	ListUserTickets(ctx context.Context, eventID, userID string) ([]*model.Ticket, error)
	// CheckIn flips a valid ticket to used.
	CheckIn(ctx context.Context, id string) (*model.Ticket, error)
}

type TicketServiceImpl struct {
	ticketRepo repository.TicketRepository
}

func NewTicketService(ticketRepo repository.TicketRepository) *TicketServiceImpl {
	return &TicketServiceImpl{
		ticketRepo: ticketRepo,
	}
}

func (s *TicketServiceImpl) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	return s.ticketRepo.FindByID(ctx, id)
}

func (s *TicketServiceImpl) ListUserTickets(ctx context.Context, eventID, userID string) ([]*model.Ticket, error) {
	if userID == "" {
		return nil, apperrors.ErrMissingUserID
	}
	return s.ticketRepo.ListByUser(ctx, eventID, userID)
}

func (s *TicketServiceImpl) CheckIn(ctx context.Context, id string) (*model.Ticket, error) {
	flipped, err := s.ticketRepo.UpdateStatusIf(ctx, id,
		[]model.TicketStatus{model.TicketStatusValid}, model.TicketStatusUsed)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// Either the ticket does not exist or it is not valid anymore;
		// distinguish for the caller.
		if _, err := s.ticketRepo.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrInvalidTicketStatus
	}

	return s.ticketRepo.FindByID(ctx, id)
}
