package model

import "time"

type TicketStatus string

const (
	TicketStatusValid     TicketStatus = "valid"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusRefunded  TicketStatus = "refunded"
	TicketStatusCancelled TicketStatus = "cancelled"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusValid, TicketStatusUsed, TicketStatusRefunded, TicketStatusCancelled:
		return true
	}
	return false
}

func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusValid:     {TicketStatusUsed, TicketStatusRefunded, TicketStatusCancelled},
		TicketStatusUsed:      {TicketStatusRefunded},
		TicketStatusRefunded:  {},
		TicketStatusCancelled: {},
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

// Ticket is created exclusively by the purchase finalizer from a purchased
// waiting list entry. Everything except Status is immutable afterwards.
type Ticket struct {
	ID              string       `json:"id" db:"id"`
	EventID         string       `json:"event_id" db:"event_id"`
	UserID          string       `json:"user_id" db:"user_id"`
	TicketTypeID    string       `json:"ticket_type_id" db:"ticket_type_id"`
	WaitlistEntryID string       `json:"waitlist_entry_id" db:"waitlist_entry_id"`
	Status          TicketStatus `json:"status" db:"status"`
	PurchasedAt     time.Time    `json:"purchased_at" db:"purchased_at"`
	Amount          float64      `json:"amount" db:"amount"`
	Currency        string       `json:"currency" db:"currency"`
	PaymentRef      string       `json:"payment_ref" db:"payment_ref"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}
