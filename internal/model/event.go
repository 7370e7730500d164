package model

import "time"

type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
)

type Event struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Status    EventStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

func (e *Event) IsCancelled() bool {
	return e.Status == EventStatusCancelled
}

// TicketType is one capacity pool of an event. Remaining is the single
// source of truth for availability and is only mutated inside transactions
// that hold the row lock.
type TicketType struct {
	ID        string    `json:"id" db:"id"`
	EventID   string    `json:"event_id" db:"event_id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Remaining int       `json:"remaining" db:"remaining"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (t *TicketType) IsSoldOut() bool {
	return t.Remaining <= 0
}

// TicketTypeAvailability is the cached read projection of a ticket type.
type TicketTypeAvailability struct {
	TicketTypeID string `json:"ticket_type_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Remaining    int    `json:"remaining"`
	IsSoldOut    bool   `json:"is_sold_out"`
}

type CreateTicketTypeRequest struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"min=0"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
}

type CreateEventRequest struct {
	Name        string                    `json:"name" binding:"required"`
	TicketTypes []CreateTicketTypeRequest `json:"ticket_types" binding:"required,min=1,dive"`
}
