package model

import "time"

// EntryStatus is the state of a waiting list entry.
//
// waiting -> offered -> purchased is the happy path. Only offered entries
// expire (waiting entries hold no inventory). Any active entry can be
// cancelled. purchased, expired and cancelled are terminal.
type EntryStatus string

const (
	EntryStatusWaiting   EntryStatus = "waiting"
	EntryStatusOffered   EntryStatus = "offered"
	EntryStatusPurchased EntryStatus = "purchased"
	EntryStatusExpired   EntryStatus = "expired"
	EntryStatusCancelled EntryStatus = "cancelled"
)

func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusWaiting, EntryStatusOffered, EntryStatusPurchased,
		EntryStatusExpired, EntryStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the entry still holds a claim (and, for offered
// entries, inventory).
func (s EntryStatus) IsActive() bool {
	return s == EntryStatusWaiting || s == EntryStatusOffered
}

func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusPurchased || s == EntryStatusExpired || s == EntryStatusCancelled
}

func (s EntryStatus) CanTransitionTo(target EntryStatus) bool {
	transitions := map[EntryStatus][]EntryStatus{
		EntryStatusWaiting:   {EntryStatusOffered, EntryStatusCancelled},
		EntryStatusOffered:   {EntryStatusPurchased, EntryStatusExpired, EntryStatusCancelled},
		EntryStatusPurchased: {},
		EntryStatusExpired:   {},
		EntryStatusCancelled: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// WaitingListEntry is one user's claim on a quantity of a ticket type.
// At most one active entry may exist per (event, ticket type, user).
type WaitingListEntry struct {
	ID             string      `json:"id" db:"id"`
	EventID        string      `json:"event_id" db:"event_id"`
	UserID         string      `json:"user_id" db:"user_id"`
	TicketTypeID   string      `json:"ticket_type_id" db:"ticket_type_id"`
	Quantity       int         `json:"quantity" db:"quantity"`
	Status         EntryStatus `json:"status" db:"status"`
	OfferExpiresAt *time.Time  `json:"offer_expires_at,omitempty" db:"offer_expires_at"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// OfferExpired reports whether an offered entry's payment window has closed.
func (e *WaitingListEntry) OfferExpired(now time.Time) bool {
	return e.Status == EntryStatusOffered &&
		e.OfferExpiresAt != nil &&
		e.OfferExpiresAt.Before(now)
}

type JoinRequest struct {
	EventID      string `json:"event_id" binding:"required"`
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

// Queue position read projection statuses.
const (
	PositionStatusWaiting    = "waiting"
	PositionStatusOffered    = "offered"
	PositionStatusPurchased  = "purchased"
	PositionStatusNotInQueue = "not_in_queue"
	PositionStatusUnknown    = "unknown"
)

// QueuePosition is the cached, possibly slightly stale, view of a user's
// place in line.
type QueuePosition struct {
	Status               string     `json:"status"`
	Position             int        `json:"position,omitempty"` // 1-based among waiting entries
	PeopleAhead          int        `json:"people_ahead"`
	EstimatedWaitSeconds int64      `json:"estimated_wait_seconds,omitempty"`
	OfferExpiresAt       *time.Time `json:"offer_expires_at,omitempty"`
}
