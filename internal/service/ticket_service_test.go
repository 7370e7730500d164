package service

import (
	"context"
	"testing"
	"ticket-waitlist/internal/mocks"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketService_ListUserTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the user's tickets", func(t *testing.T) {
		ticketRepo := mocks.NewTicketRepositoryMock()
		svc := NewTicketService(ticketRepo)
		ticketRepo.On("ListByUser", ctx, "ev1", "u1").
			Return([]*model.Ticket{{ID: "t1"}}, nil)

		tickets, err := svc.ListUserTickets(ctx, "ev1", "u1")
		require.NoError(t, err)
		assert.Len(t, tickets, 1)
	})

	t.Run("missing identity", func(t *testing.T) {
		svc := NewTicketService(mocks.NewTicketRepositoryMock())
		_, err := svc.ListUserTickets(ctx, "ev1", "")
		assert.ErrorIs(t, err, apperrors.ErrMissingUserID)
	})
}

func TestTicketService_CheckIn(t *testing.T) {
	ctx := context.Background()

	t.Run("valid ticket flips to used", func(t *testing.T) {
		ticketRepo := mocks.NewTicketRepositoryMock()
		svc := NewTicketService(ticketRepo)
		ticketRepo.On("UpdateStatusIf", ctx, "t1",
			[]model.TicketStatus{model.TicketStatusValid}, model.TicketStatusUsed).Return(true, nil)
		ticketRepo.On("FindByID", ctx, "t1").
			Return(&model.Ticket{ID: "t1", Status: model.TicketStatusUsed}, nil)

		ticket, err := svc.CheckIn(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, model.TicketStatusUsed, ticket.Status)
	})

	t.Run("already used ticket is rejected", func(t *testing.T) {
		ticketRepo := mocks.NewTicketRepositoryMock()
		svc := NewTicketService(ticketRepo)
		ticketRepo.On("UpdateStatusIf", ctx, "t1",
			[]model.TicketStatus{model.TicketStatusValid}, model.TicketStatusUsed).Return(false, nil)
		ticketRepo.On("FindByID", ctx, "t1").
			Return(&model.Ticket{ID: "t1", Status: model.TicketStatusUsed}, nil)

		_, err := svc.CheckIn(ctx, "t1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTicketStatus)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		ticketRepo := mocks.NewTicketRepositoryMock()
		svc := NewTicketService(ticketRepo)
		ticketRepo.On("UpdateStatusIf", ctx, "t1",
			[]model.TicketStatus{model.TicketStatusValid}, model.TicketStatusUsed).Return(false, nil)
		ticketRepo.On("FindByID", ctx, "t1").Return(nil, apperrors.ErrTicketNotFound)

		_, err := svc.CheckIn(ctx, "t1")
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}
