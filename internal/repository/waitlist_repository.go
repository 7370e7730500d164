package repository

import (
	"context"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/pkg/apperrors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `id, event_id, user_id, ticket_type_id, quantity, status, offer_expires_at, created_at, updated_at`

type WaitlistRepository interface {
	FindCurrentByUser(ctx context.Context, eventID, userID string) (*model.WaitingListEntry, error)
	WaitingAhead(ctx context.Context, entry *model.WaitingListEntry) (int, error)
	ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*model.WaitingListEntry, error)
	ListPromotableTicketTypes(ctx context.Context) ([]string, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, entry *model.WaitingListEntry) (*model.WaitingListEntry, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.WaitingListEntry, error)
	HasActive(ctx context.Context, tx pgx.Tx, eventID, ticketTypeID, userID string) (bool, error)
	CountWaiting(ctx context.Context, tx pgx.Tx, ticketTypeID string) (int, error)
	ListWaitingFIFO(ctx context.Context, tx pgx.Tx, ticketTypeID string, limit int) ([]*model.WaitingListEntry, error)
	UpdateStatusIf(ctx context.Context, tx pgx.Tx, id string, from, to model.EntryStatus) (bool, error)
	MarkOffered(ctx context.Context, tx pgx.Tx, id string, expiresAt time.Time) (bool, error)
	CancelActiveByEvent(ctx context.Context, tx pgx.Tx, eventID string) (int, error)
}

type WaitlistRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewWaitlistRepository(pool *pgxpool.Pool) WaitlistRepository {
	return &WaitlistRepositoryImpl{
		pool: pool,
	}
}

func scanEntry(row pgx.Row) (*model.WaitingListEntry, error) {
	var entry model.WaitingListEntry
	err := row.Scan(
		&entry.ID,
		&entry.EventID,
		&entry.UserID,
		&entry.TicketTypeID,
		&entry.Quantity,
		&entry.Status,
		&entry.OfferExpiresAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindCurrentByUser returns the user's most recent claim that still matters
// to the read path: waiting, offered or purchased. Expired and cancelled
// entries are history.
func (r *WaitlistRepositoryImpl) FindCurrentByUser(ctx context.Context, eventID, userID string) (*model.WaitingListEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM waitlist_entries
		WHERE event_id = $1 AND user_id = $2 AND status = ANY($3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	statuses := []string{
		string(model.EntryStatusWaiting),
		string(model.EntryStatusOffered),
		string(model.EntryStatusPurchased),
	}

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, eventID, userID, statuses))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, err
	}

	return entry, nil
}

// WaitingAhead counts waiting entries for the same ticket type created
// before the given entry. Ties on created_at are broken by id so the rank
// is stable.
func (r *WaitlistRepositoryImpl) WaitingAhead(ctx context.Context, entry *model.WaitingListEntry) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM waitlist_entries
		WHERE ticket_type_id = $1
		  AND status = $2
		  AND (created_at < $3 OR (created_at = $3 AND id < $4))
	`

	var count int
	err := r.pool.QueryRow(ctx, query,
		entry.TicketTypeID, model.EntryStatusWaiting, entry.CreatedAt, entry.ID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *WaitlistRepositoryImpl) ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*model.WaitingListEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM waitlist_entries
		WHERE status = $1 AND offer_expires_at < $2
		ORDER BY offer_expires_at ASC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, model.EntryStatusOffered, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListPromotableTicketTypes returns ticket types that have both freed
// capacity and a waiting queue.
func (r *WaitlistRepositoryImpl) ListPromotableTicketTypes(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT w.ticket_type_id
		FROM waitlist_entries w
		JOIN ticket_types t ON t.id = w.ticket_type_id
		WHERE w.status = $1 AND t.remaining > 0
	`

	rows, err := r.pool.Query(ctx, query, model.EntryStatusWaiting)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *WaitlistRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, entry *model.WaitingListEntry) (*model.WaitingListEntry, error) {
	query := `
		INSERT INTO waitlist_entries (id, event_id, user_id, ticket_type_id, quantity, status, offer_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		entry.ID, entry.EventID, entry.UserID, entry.TicketTypeID,
		entry.Quantity, entry.Status, entry.OfferExpiresAt,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *WaitlistRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.WaitingListEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM waitlist_entries
		WHERE id = $1
		FOR UPDATE
	`

	entry, err := scanEntry(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, err
	}

	return entry, nil
}

func (r *WaitlistRepositoryImpl) HasActive(ctx context.Context, tx pgx.Tx, eventID, ticketTypeID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM waitlist_entries
			WHERE event_id = $1 AND ticket_type_id = $2 AND user_id = $3 AND status = ANY($4)
		)
	`

	statuses := []string{
		string(model.EntryStatusWaiting),
		string(model.EntryStatusOffered),
	}

	var exists bool
	err := tx.QueryRow(ctx, query, eventID, ticketTypeID, userID, statuses).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *WaitlistRepositoryImpl) CountWaiting(ctx context.Context, tx pgx.Tx, ticketTypeID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM waitlist_entries
		WHERE ticket_type_id = $1 AND status = $2
	`

	var count int
	err := tx.QueryRow(ctx, query, ticketTypeID, model.EntryStatusWaiting).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ListWaitingFIFO locks and returns waiting entries in creation order,
// earliest first.
func (r *WaitlistRepositoryImpl) ListWaitingFIFO(ctx context.Context, tx pgx.Tx, ticketTypeID string, limit int) ([]*model.WaitingListEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM waitlist_entries
		WHERE ticket_type_id = $1 AND status = $2
		ORDER BY created_at ASC, id ASC
		LIMIT $3
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ticketTypeID, model.EntryStatusWaiting, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// UpdateStatusIf is a compare-and-set on the entry status. It reports
// whether the row actually flipped, which makes sweeps idempotent: a second
// run finds nothing in the expected state.
func (r *WaitlistRepositoryImpl) UpdateStatusIf(ctx context.Context, tx pgx.Tx, id string, from, to model.EntryStatus) (bool, error) {
	query := `
		UPDATE waitlist_entries
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := tx.Exec(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

func (r *WaitlistRepositoryImpl) MarkOffered(ctx context.Context, tx pgx.Tx, id string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE waitlist_entries
		SET status = $1, offer_expires_at = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := tx.Exec(ctx, query,
		model.EntryStatusOffered, expiresAt, time.Now().UTC(), id, model.EntryStatusWaiting,
	)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

func (r *WaitlistRepositoryImpl) CancelActiveByEvent(ctx context.Context, tx pgx.Tx, eventID string) (int, error) {
	query := `
		UPDATE waitlist_entries
		SET status = $1, updated_at = $2
		WHERE event_id = $3 AND status = ANY($4)
	`

	statuses := []string{
		string(model.EntryStatusWaiting),
		string(model.EntryStatusOffered),
	}

	result, err := tx.Exec(ctx, query, model.EntryStatusCancelled, time.Now().UTC(), eventID, statuses)
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}

func collectEntries(rows pgx.Rows) ([]*model.WaitingListEntry, error) {
	entries := make([]*model.WaitingListEntry, 0)

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
