package mocks

import (
	"context"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/internal/payment"

	"github.com/stretchr/testify/mock"
)

type WaitlistServiceMock struct {
	mock.Mock
}

func NewWaitlistServiceMock() *WaitlistServiceMock {
	return &WaitlistServiceMock{}
}

func (m *WaitlistServiceMock) Join(ctx context.Context, userID string, req model.JoinRequest) (*model.WaitingListEntry, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WaitingListEntry), args.Error(1)
}

func (m *WaitlistServiceMock) CancelEntry(ctx context.Context, userID, entryID string) (*model.WaitingListEntry, error) {
	args := m.Called(ctx, userID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WaitingListEntry), args.Error(1)
}

func (m *WaitlistServiceMock) GetQueuePosition(ctx context.Context, eventID, userID string) *model.QueuePosition {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.QueuePosition)
}

type EventServiceMock struct {
	mock.Mock
}

func NewEventServiceMock() *EventServiceMock {
	return &EventServiceMock{}
}

func (m *EventServiceMock) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, []*model.TicketType, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Event), args.Get(1).([]*model.TicketType), args.Error(2)
}

func (m *EventServiceMock) GetAvailability(ctx context.Context, eventID string, bypass bool) []model.TicketTypeAvailability {
	args := m.Called(ctx, eventID, bypass)
	return args.Get(0).([]model.TicketTypeAvailability)
}

func (m *EventServiceMock) SearchEvents(ctx context.Context, query string) []*model.Event {
	args := m.Called(ctx, query)
	return args.Get(0).([]*model.Event)
}

func (m *EventServiceMock) CancelEvent(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

type PurchaseServiceMock struct {
	mock.Mock
}

func NewPurchaseServiceMock() *PurchaseServiceMock {
	return &PurchaseServiceMock{}
}

func (m *PurchaseServiceMock) Finalize(ctx context.Context, ev payment.ConfirmationEvent) ([]*model.Ticket, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

type TicketServiceMock struct {
	mock.Mock
}

func NewTicketServiceMock() *TicketServiceMock {
	return &TicketServiceMock{}
}

func (m *TicketServiceMock) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) ListUserTickets(ctx context.Context, eventID, userID string) ([]*model.Ticket, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) CheckIn(ctx context.Context, id string) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}
