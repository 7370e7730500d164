package mocks

import (
	"context"
	"ticket-waitlist/internal/model"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type EventRepositoryMock struct {
	mock.Mock
}

func NewEventRepositoryMock() *EventRepositoryMock {
	return &EventRepositoryMock{}
}

func (m *EventRepositoryMock) Create(ctx context.Context, event *model.Event, ticketTypes []*model.TicketType) (*model.Event, error) {
	args := m.Called(ctx, event, ticketTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventRepositoryMock) FindByID(ctx context.Context, id string) (*model.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventRepositoryMock) SearchByName(ctx context.Context, query string) ([]*model.Event, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *EventRepositoryMock) ListTicketTypes(ctx context.Context, eventID string) ([]*model.TicketType, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TicketType), args.Error(1)
}

func (m *EventRepositoryMock) FindTicketTypeByID(ctx context.Context, id string) (*model.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketType), args.Error(1)
}

func (m *EventRepositoryMock) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status model.EventStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *EventRepositoryMock) FindTicketTypeForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.TicketType, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketType), args.Error(1)
}

func (m *EventRepositoryMock) DecrementRemaining(ctx context.Context, tx pgx.Tx, ticketTypeID string, quantity int) error {
	args := m.Called(ctx, tx, ticketTypeID, quantity)
	return args.Error(0)
}

func (m *EventRepositoryMock) CreditRemaining(ctx context.Context, tx pgx.Tx, ticketTypeID string, quantity int) error {
	args := m.Called(ctx, tx, ticketTypeID, quantity)
	return args.Error(0)
}

type WaitlistRepositoryMock struct {
	mock.Mock
}

func NewWaitlistRepositoryMock() *WaitlistRepositoryMock {
	return &WaitlistRepositoryMock{}
}

func (m *WaitlistRepositoryMock) FindCurrentByUser(ctx context.Context, eventID, userID string) (*model.WaitingListEntry, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WaitingListEntry), args.Error(1)
}

func (m *WaitlistRepositoryMock) WaitingAhead(ctx context.Context, entry *model.WaitingListEntry) (int, error) {
	args := m.Called(ctx, entry)
	return args.Int(0), args.Error(1)
}

func (m *WaitlistRepositoryMock) ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*model.WaitingListEntry, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WaitingListEntry), args.Error(1)
}

func (m *WaitlistRepositoryMock) ListPromotableTicketTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *WaitlistRepositoryMock) Create(ctx context.Context, tx pgx.Tx, entry *model.WaitingListEntry) (*model.WaitingListEntry, error) {
	args := m.Called(ctx, tx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WaitingListEntry), args.Error(1)
}

func (m *WaitlistRepositoryMock) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.WaitingListEntry, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WaitingListEntry), args.Error(1)
}

func (m *WaitlistRepositoryMock) HasActive(ctx context.Context, tx pgx.Tx, eventID, ticketTypeID, userID string) (bool, error) {
	args := m.Called(ctx, tx, eventID, ticketTypeID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *WaitlistRepositoryMock) CountWaiting(ctx context.Context, tx pgx.Tx, ticketTypeID string) (int, error) {
	args := m.Called(ctx, tx, ticketTypeID)
	return args.Int(0), args.Error(1)
}

func (m *WaitlistRepositoryMock) ListWaitingFIFO(ctx context.Context, tx pgx.Tx, ticketTypeID string, limit int) ([]*model.WaitingListEntry, error) {
	args := m.Called(ctx, tx, ticketTypeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WaitingListEntry), args.Error(1)
}

func (m *WaitlistRepositoryMock) UpdateStatusIf(ctx context.Context, tx pgx.Tx, id string, from, to model.EntryStatus) (bool, error) {
	args := m.Called(ctx, tx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *WaitlistRepositoryMock) MarkOffered(ctx context.Context, tx pgx.Tx, id string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, tx, id, expiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *WaitlistRepositoryMock) CancelActiveByEvent(ctx context.Context, tx pgx.Tx, eventID string) (int, error) {
	args := m.Called(ctx, tx, eventID)
	return args.Int(0), args.Error(1)
}

type TicketRepositoryMock struct {
	mock.Mock
}

func NewTicketRepositoryMock() *TicketRepositoryMock {
	return &TicketRepositoryMock{}
}

func (m *TicketRepositoryMock) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) ListRefundable(ctx context.Context, eventID string) ([]*model.Ticket, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) ListByUser(ctx context.Context, eventID, userID string) ([]*model.Ticket, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) UpdateStatusIf(ctx context.Context, id string, from []model.TicketStatus, to model.TicketStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *TicketRepositoryMock) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error {
	args := m.Called(ctx, tx, tickets)
	return args.Error(0)
}

type ProviderMock struct {
	mock.Mock
}

func NewProviderMock() *ProviderMock {
	return &ProviderMock{}
}

func (m *ProviderMock) Refund(ctx context.Context, reference string, amount float64, currency string) error {
	args := m.Called(ctx, reference, amount, currency)
	return args.Error(0)
}
