package apperrors

import "errors"

// Capacity errors: the request cannot be satisfied by current inventory.
var (
	ErrInsufficientCapacity = errors.New("insufficient capacity")
)

// State-conflict errors: the entity exists but is not in a state that
// permits the requested transition.
var (
	ErrOfferExpired        = errors.New("offer expired")
	ErrInvalidEntryStatus  = errors.New("invalid waiting list entry status")
	ErrInvalidTicketStatus = errors.New("invalid ticket status")
	ErrAlreadyInWaitlist   = errors.New("user already has an active entry for this ticket type")
	ErrEventCancelled      = errors.New("event is cancelled")
)

// Not-found errors.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrEntryNotFound      = errors.New("waiting list entry not found")
	ErrTicketNotFound     = errors.New("ticket not found")
)

// Input errors.
var (
	ErrMissingUserID = errors.New("missing user id")
	ErrInvalidInput  = errors.New("invalid input")
)
