package repository

import (
	"context"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/pkg/apperrors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event, ticketTypes []*model.TicketType) (*model.Event, error)
	FindByID(ctx context.Context, id string) (*model.Event, error)
	SearchByName(ctx context.Context, query string) ([]*model.Event, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]*model.TicketType, error)
	FindTicketTypeByID(ctx context.Context, id string) (*model.TicketType, error)

	// Transaction methods
	UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status model.EventStatus) error
	FindTicketTypeForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.TicketType, error)
	DecrementRemaining(ctx context.Context, tx pgx.Tx, ticketTypeID string, quantity int) error
	CreditRemaining(ctx context.Context, tx pgx.Tx, ticketTypeID string, quantity int) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event, ticketTypes []*model.TicketType) (*model.Event, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO events (id, name, status)
		VALUES ($1, $2, $3)
		RETURNING id, name, status, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query, event.ID, event.Name, event.Status).Scan(
		&event.ID,
		&event.Name,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ttQuery := `
		INSERT INTO ticket_types (id, event_id, name, price, quantity, remaining)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	for _, tt := range ticketTypes {
		err = tx.QueryRow(ctx, ttQuery,
			tt.ID, tt.EventID, tt.Name, tt.Price, tt.Quantity, tt.Remaining,
		).Scan(&tt.CreatedAt, &tt.UpdatedAt)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return event, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Event, error) {
	query := `
		SELECT id, name, status, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	var event model.Event
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) SearchByName(ctx context.Context, query string) ([]*model.Event, error) {
	sql := `
		SELECT id, name, status, created_at, updated_at
		FROM events
		WHERE status = $1 AND name ILIKE $2 || '%'
		ORDER BY name ASC
		LIMIT 50
	`

	rows, err := r.pool.Query(ctx, sql, model.EventStatusActive, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)

	for rows.Next() {
		var event model.Event
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepositoryImpl) ListTicketTypes(ctx context.Context, eventID string) ([]*model.TicketType, error) {
	query := `
		SELECT id, event_id, name, price, quantity, remaining, created_at, updated_at
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ticketTypes := make([]*model.TicketType, 0)

	for rows.Next() {
		var tt model.TicketType
		err := rows.Scan(
			&tt.ID,
			&tt.EventID,
			&tt.Name,
			&tt.Price,
			&tt.Quantity,
			&tt.Remaining,
			&tt.CreatedAt,
			&tt.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		ticketTypes = append(ticketTypes, &tt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ticketTypes, nil
}

func (r *EventRepositoryImpl) FindTicketTypeByID(ctx context.Context, id string) (*model.TicketType, error) {
	query := `
		SELECT id, event_id, name, price, quantity, remaining, created_at, updated_at
		FROM ticket_types
		WHERE id = $1
	`

	var tt model.TicketType
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.Price,
		&tt.Quantity,
		&tt.Remaining,
		&tt.CreatedAt,
		&tt.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}

	return &tt, nil
}

func (r *EventRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status model.EventStatus) error {
	query := `
		UPDATE events
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}

func (r *EventRepositoryImpl) FindTicketTypeForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.TicketType, error) {
	query := `
		SELECT id, event_id, name, price, quantity, remaining, created_at, updated_at
		FROM ticket_types
		WHERE id = $1
		FOR UPDATE
	`

	var tt model.TicketType
	err := tx.QueryRow(ctx, query, id).Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.Price,
		&tt.Quantity,
		&tt.Remaining,
		&tt.CreatedAt,
		&tt.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}

	return &tt, nil
}

func (r *EventRepositoryImpl) DecrementRemaining(ctx context.Context, tx pgx.Tx, ticketTypeID string, quantity int) error {
	query := `
		UPDATE ticket_types
		SET remaining = remaining - $1, updated_at = $2
		WHERE id = $3 AND remaining >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), ticketTypeID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientCapacity
	}

	return nil
}

// CreditRemaining returns quantity to the pool, capped at the total so an
// expired offer can never push remaining past quantity.
func (r *EventRepositoryImpl) CreditRemaining(ctx context.Context, tx pgx.Tx, ticketTypeID string, quantity int) error {
	query := `
		UPDATE ticket_types
		SET remaining = LEAST(quantity, remaining + $1), updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), ticketTypeID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}
