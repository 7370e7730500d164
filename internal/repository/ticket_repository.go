package repository

import (
	"context"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/pkg/apperrors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ticketColumns = `id, event_id, user_id, ticket_type_id, waitlist_entry_id, status, purchased_at, amount, currency, payment_ref, created_at, updated_at`

type TicketRepository interface {
	FindByID(ctx context.Context, id string) (*model.Ticket, error)
	ListRefundable(ctx context.Context, eventID string) ([]*model.Ticket, error)
	ListByUser(ctx context.Context, eventID, userID string) ([]*model.Ticket, error)
	UpdateStatusIf(ctx context.Context, id string, from []model.TicketStatus, to model.TicketStatus) (bool, error)

	// Transaction methods
	CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.UserID,
		&ticket.TicketTypeID,
		&ticket.WaitlistEntryID,
		&ticket.Status,
		&ticket.PurchasedAt,
		&ticket.Amount,
		&ticket.Currency,
		&ticket.PaymentRef,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

// ListRefundable returns the tickets an event cancellation must refund:
// valid and used ones. Already refunded tickets are excluded so a retried
// cancellation does not refund twice.
func (r *TicketRepositoryImpl) ListRefundable(ctx context.Context, eventID string) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1 AND status = ANY($2)
		ORDER BY created_at ASC
	`

	statuses := []string{
		string(model.TicketStatusValid),
		string(model.TicketStatusUsed),
	}

	rows, err := r.pool.Query(ctx, query, eventID, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (r *TicketRepositoryImpl) ListByUser(ctx context.Context, eventID, userID string) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1 AND user_id = $2
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (r *TicketRepositoryImpl) UpdateStatusIf(ctx context.Context, id string, from []model.TicketStatus, to model.TicketStatus) (bool, error) {
	query := `
		UPDATE tickets
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`

	fromStatuses := make([]string, 0, len(from))
	for _, s := range from {
		fromStatuses = append(fromStatuses, string(s))
	}

	result, err := r.pool.Exec(ctx, query, to, time.Now().UTC(), id, fromStatuses)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

func (r *TicketRepositoryImpl) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error {
	query := `
		INSERT INTO tickets (id, event_id, user_id, ticket_type_id, waitlist_entry_id,
			status, purchased_at, amount, currency, payment_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	for _, ticket := range tickets {
		err := tx.QueryRow(ctx, query,
			ticket.ID, ticket.EventID, ticket.UserID, ticket.TicketTypeID,
			ticket.WaitlistEntryID, ticket.Status, ticket.PurchasedAt,
			ticket.Amount, ticket.Currency, ticket.PaymentRef,
		).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return nil
}

func collectTickets(rows pgx.Rows) ([]*model.Ticket, error) {
	tickets := make([]*model.Ticket, 0)

	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}
