package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"ticket-waitlist/config"
	"ticket-waitlist/internal/cache"
	"ticket-waitlist/internal/jobs"
	"ticket-waitlist/internal/mocks"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/internal/payment"
	"ticket-waitlist/pkg/apperrors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerState is a shared in-memory backing store for the fake repositories
// below, so the whole admission pipeline can be driven end to end without a
// database. Transactions are not modeled; the fakes mutate state directly.
type ledgerState struct {
	events      map[string]*model.Event
	ticketTypes map[string]*model.TicketType
	entries     map[string]*model.WaitingListEntry
	tickets     map[string]*model.Ticket
	seq         int
	base        time.Time
}

func newLedgerState() *ledgerState {
	return &ledgerState{
		events:      map[string]*model.Event{},
		ticketTypes: map[string]*model.TicketType{},
		entries:     map[string]*model.WaitingListEntry{},
		tickets:     map[string]*model.Ticket{},
		base:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (st *ledgerState) nextCreatedAt() time.Time {
	st.seq++
	return st.base.Add(time.Duration(st.seq) * time.Second)
}

func (st *ledgerState) sortedWaiting(ticketTypeID string) []*model.WaitingListEntry {
	out := make([]*model.WaitingListEntry, 0)
	for _, e := range st.entries {
		if e.TicketTypeID == ticketTypeID && e.Status == model.EntryStatusWaiting {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type fakeEventRepo struct{ st *ledgerState }

func (r *fakeEventRepo) Create(ctx context.Context, event *model.Event, ticketTypes []*model.TicketType) (*model.Event, error) {
	r.st.events[event.ID] = event
	for _, tt := range ticketTypes {
		r.st.ticketTypes[tt.ID] = tt
	}
	return event, nil
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	event, ok := r.st.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

func (r *fakeEventRepo) SearchByName(ctx context.Context, query string) ([]*model.Event, error) {
	out := make([]*model.Event, 0)
	for _, e := range r.st.events {
		if e.Status == model.EventStatusActive && strings.HasPrefix(strings.ToLower(e.Name), strings.ToLower(query)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListTicketTypes(ctx context.Context, eventID string) ([]*model.TicketType, error) {
	out := make([]*model.TicketType, 0)
	for _, tt := range r.st.ticketTypes {
		if tt.EventID == eventID {
			out = append(out, tt)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) FindTicketTypeByID(ctx context.Context, id string) (*model.TicketType, error) {
	tt, ok := r.st.ticketTypes[id]
	if !ok {
		return nil, apperrors.ErrTicketTypeNotFound
	}
	snapshot := *tt
	return &snapshot, nil
}

func (r *fakeEventRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status model.EventStatus) error {
	event, ok := r.st.events[id]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	event.Status = status
	return nil
}

func (r *fakeEventRepo) FindTicketTypeForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.TicketType, error) {
	return r.FindTicketTypeByID(ctx, id)
}

func (r *fakeEventRepo) DecrementRemaining(ctx context.Context, tx pgx.Tx, ticketTypeID string, quantity int) error {
	tt, ok := r.st.ticketTypes[ticketTypeID]
	if !ok {
		return apperrors.ErrTicketTypeNotFound
	}
	if tt.Remaining < quantity {
		return apperrors.ErrInsufficientCapacity
	}
	tt.Remaining -= quantity
	return nil
}

func (r *fakeEventRepo) CreditRemaining(ctx context.Context, tx pgx.Tx, ticketTypeID string, quantity int) error {
	tt, ok := r.st.ticketTypes[ticketTypeID]
	if !ok {
		return apperrors.ErrTicketTypeNotFound
	}
	tt.Remaining += quantity
	if tt.Remaining > tt.Quantity {
		tt.Remaining = tt.Quantity
	}
	return nil
}

type fakeWaitlistRepo struct{ st *ledgerState }

func (r *fakeWaitlistRepo) FindCurrentByUser(ctx context.Context, eventID, userID string) (*model.WaitingListEntry, error) {
	var current *model.WaitingListEntry
	for _, e := range r.st.entries {
		if e.EventID != eventID || e.UserID != userID {
			continue
		}
		if e.Status != model.EntryStatusWaiting && e.Status != model.EntryStatusOffered && e.Status != model.EntryStatusPurchased {
			continue
		}
		if current == nil || e.CreatedAt.After(current.CreatedAt) {
			current = e
		}
	}
	if current == nil {
		return nil, apperrors.ErrEntryNotFound
	}
	return current, nil
}

func (r *fakeWaitlistRepo) WaitingAhead(ctx context.Context, entry *model.WaitingListEntry) (int, error) {
	count := 0
	for _, e := range r.st.entries {
		if e.TicketTypeID != entry.TicketTypeID || e.Status != model.EntryStatusWaiting {
			continue
		}
		if e.CreatedAt.Before(entry.CreatedAt) || (e.CreatedAt.Equal(entry.CreatedAt) && e.ID < entry.ID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeWaitlistRepo) ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*model.WaitingListEntry, error) {
	out := make([]*model.WaitingListEntry, 0)
	for _, e := range r.st.entries {
		if len(out) >= limit {
			break
		}
		if e.Status == model.EntryStatusOffered && e.OfferExpiresAt != nil && e.OfferExpiresAt.Before(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeWaitlistRepo) ListPromotableTicketTypes(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := make([]string, 0)
	for _, e := range r.st.entries {
		if e.Status != model.EntryStatusWaiting || seen[e.TicketTypeID] {
			continue
		}
		if tt, ok := r.st.ticketTypes[e.TicketTypeID]; ok && tt.Remaining > 0 {
			seen[e.TicketTypeID] = true
			out = append(out, e.TicketTypeID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeWaitlistRepo) Create(ctx context.Context, tx pgx.Tx, entry *model.WaitingListEntry) (*model.WaitingListEntry, error) {
	entry.CreatedAt = r.st.nextCreatedAt()
	entry.UpdatedAt = entry.CreatedAt
	r.st.entries[entry.ID] = entry
	return entry, nil
}

func (r *fakeWaitlistRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.WaitingListEntry, error) {
	entry, ok := r.st.entries[id]
	if !ok {
		return nil, apperrors.ErrEntryNotFound
	}
	return entry, nil
}

func (r *fakeWaitlistRepo) HasActive(ctx context.Context, tx pgx.Tx, eventID, ticketTypeID, userID string) (bool, error) {
	for _, e := range r.st.entries {
		if e.EventID == eventID && e.TicketTypeID == ticketTypeID && e.UserID == userID && e.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeWaitlistRepo) CountWaiting(ctx context.Context, tx pgx.Tx, ticketTypeID string) (int, error) {
	return len(r.st.sortedWaiting(ticketTypeID)), nil
}

func (r *fakeWaitlistRepo) ListWaitingFIFO(ctx context.Context, tx pgx.Tx, ticketTypeID string, limit int) ([]*model.WaitingListEntry, error) {
	waiting := r.st.sortedWaiting(ticketTypeID)
	if len(waiting) > limit {
		waiting = waiting[:limit]
	}
	return waiting, nil
}

func (r *fakeWaitlistRepo) UpdateStatusIf(ctx context.Context, tx pgx.Tx, id string, from, to model.EntryStatus) (bool, error) {
	entry, ok := r.st.entries[id]
	if !ok || entry.Status != from {
		return false, nil
	}
	entry.Status = to
	return true, nil
}

func (r *fakeWaitlistRepo) MarkOffered(ctx context.Context, tx pgx.Tx, id string, expiresAt time.Time) (bool, error) {
	entry, ok := r.st.entries[id]
	if !ok || entry.Status != model.EntryStatusWaiting {
		return false, nil
	}
	entry.Status = model.EntryStatusOffered
	entry.OfferExpiresAt = &expiresAt
	return true, nil
}

func (r *fakeWaitlistRepo) CancelActiveByEvent(ctx context.Context, tx pgx.Tx, eventID string) (int, error) {
	count := 0
	for _, e := range r.st.entries {
		if e.EventID == eventID && e.Status.IsActive() {
			e.Status = model.EntryStatusCancelled
			count++
		}
	}
	return count, nil
}

type fakeTicketRepo struct{ st *ledgerState }

func (r *fakeTicketRepo) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	ticket, ok := r.st.tickets[id]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	return ticket, nil
}

func (r *fakeTicketRepo) ListRefundable(ctx context.Context, eventID string) ([]*model.Ticket, error) {
	out := make([]*model.Ticket, 0)
	for _, ticket := range r.st.tickets {
		if ticket.EventID == eventID &&
			(ticket.Status == model.TicketStatusValid || ticket.Status == model.TicketStatusUsed) {
			out = append(out, ticket)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ListByUser(ctx context.Context, eventID, userID string) ([]*model.Ticket, error) {
	out := make([]*model.Ticket, 0)
	for _, ticket := range r.st.tickets {
		if ticket.EventID == eventID && ticket.UserID == userID {
			out = append(out, ticket)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) UpdateStatusIf(ctx context.Context, id string, from []model.TicketStatus, to model.TicketStatus) (bool, error) {
	ticket, ok := r.st.tickets[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if ticket.Status == s {
			ticket.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTicketRepo) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error {
	for _, ticket := range tickets {
		r.st.tickets[ticket.ID] = ticket
	}
	return nil
}

// TestAdmissionPipeline drives the full waiting list lifecycle against
// in-memory fakes: direct offers, capacity errors, sweeping expired offers
// back into inventory, FIFO promotion with the skip rule, and purchase
// finalization.
func TestAdmissionPipeline(t *testing.T) {
	ctx := context.Background()
	cfg := config.LoadTestConfig()
	st := newLedgerState()
	eventRepo := &fakeEventRepo{st: st}
	waitlistRepo := &fakeWaitlistRepo{st: st}
	ticketRepo := &fakeTicketRepo{st: st}
	db := mocks.NewDBStub()
	orchestrator := cache.NewOrchestrator(newMapStore())

	st.events["ev1"] = &model.Event{ID: "ev1", Name: "Concert", Status: model.EventStatusActive}
	st.ticketTypes["tt1"] = &model.TicketType{ID: "tt1", EventID: "ev1", Name: "GA", Price: 50, Quantity: 2, Remaining: 2}

	waitlistSvc := NewWaitlistService(db, waitlistRepo, eventRepo, orchestrator, cfg.Cache, cfg.Admission)
	purchaseSvc := NewPurchaseService(db, waitlistRepo, eventRepo, ticketRepo)
	sweeper := jobs.NewSweeper(db, waitlistRepo, eventRepo, orchestrator)
	promoter := jobs.NewPromoter(db, waitlistRepo, eventRepo, orchestrator, cfg.Admission.OfferWindow)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	waitlistSvc.now = func() time.Time { return now }
	purchaseSvc.now = func() time.Time { return now }

	join := model.JoinRequest{EventID: "ev1", TicketTypeID: "tt1"}

	// Alice takes the whole pool and is offered on the spot.
	join.Quantity = 2
	alice, err := waitlistSvc.Join(ctx, "alice", join)
	require.NoError(t, err)
	assert.Equal(t, model.EntryStatusOffered, alice.Status)
	assert.Equal(t, 0, st.ticketTypes["tt1"].Remaining)

	// Bob finds an empty pool and no queue: capacity error, nothing queued.
	join.Quantity = 1
	_, err = waitlistSvc.Join(ctx, "bob", join)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCapacity)

	// Alice never pays. The sweeper reclaims her units.
	afterWindow := now.Add(cfg.Admission.OfferWindow + time.Minute)
	summary, err := sweeper.Run(ctx, afterWindow, cfg.Admission.SweepBatch)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, model.EntryStatusExpired, st.entries[alice.ID].Status)
	assert.Equal(t, 2, st.ticketTypes["tt1"].Remaining)

	// A second sweep finds nothing; the credit is not repeated.
	summary, err = sweeper.Run(ctx, afterWindow, cfg.Admission.SweepBatch)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 2, st.ticketTypes["tt1"].Remaining)

	// Alice's payment arrives anyway, far too late.
	lateSvc := NewPurchaseService(db, waitlistRepo, eventRepo, ticketRepo)
	lateSvc.now = func() time.Time { return afterWindow }
	_, err = lateSvc.Finalize(ctx, payment.ConfirmationEvent{
		Reference: "pay_alice", Amount: 100, Currency: "USD", WaitlistEntryID: alice.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidEntryStatus)

	// Bob retries and gets an immediate offer for one unit.
	join.Quantity = 1
	bob, err := waitlistSvc.Join(ctx, "bob", join)
	require.NoError(t, err)
	assert.Equal(t, model.EntryStatusOffered, bob.Status)
	assert.Equal(t, 1, st.ticketTypes["tt1"].Remaining)

	// Carol wants two: only one left, so she waits.
	join.Quantity = 2
	carol, err := waitlistSvc.Join(ctx, "carol", join)
	require.NoError(t, err)
	assert.Equal(t, model.EntryStatusWaiting, carol.Status)

	// Dave wants one; a queue exists, so he waits behind Carol even though
	// a unit remains.
	join.Quantity = 1
	dave, err := waitlistSvc.Join(ctx, "dave", join)
	require.NoError(t, err)
	assert.Equal(t, model.EntryStatusWaiting, dave.Status)

	pos := waitlistSvc.GetQueuePosition(ctx, "ev1", "dave")
	assert.Equal(t, model.PositionStatusWaiting, pos.Status)
	assert.Equal(t, 2, pos.Position)
	assert.Equal(t, 1, pos.PeopleAhead)

	// Promotion: Carol's two do not fit in the one remaining unit, so she is
	// skipped and Dave is promoted past her.
	summary, err = promoter.Run(ctx, now, cfg.Admission.PromoteBatch)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, model.EntryStatusWaiting, st.entries[carol.ID].Status)
	assert.Equal(t, model.EntryStatusOffered, st.entries[dave.ID].Status)
	assert.Equal(t, 0, st.ticketTypes["tt1"].Remaining)

	// Bob pays: exactly one valid ticket, inventory untouched.
	tickets, err := purchaseSvc.Finalize(ctx, payment.ConfirmationEvent{
		Reference: "pay_bob", Amount: 50, Currency: "USD", WaitlistEntryID: bob.ID,
	})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, model.TicketStatusValid, tickets[0].Status)
	assert.Equal(t, model.EntryStatusPurchased, st.entries[bob.ID].Status)
	assert.Equal(t, 0, st.ticketTypes["tt1"].Remaining)

	// Redelivered webhook is acknowledged without minting more tickets.
	again, err := purchaseSvc.Finalize(ctx, payment.ConfirmationEvent{
		Reference: "pay_bob", Amount: 50, Currency: "USD", WaitlistEntryID: bob.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Len(t, st.tickets, 1)
}
