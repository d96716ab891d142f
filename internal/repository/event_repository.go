package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/calendar-service/internal/domain"
)

// EventRepository encapsulates event persistence, including the invitee join
// table and the event reference strings mirrored onto user records.
type EventRepository interface {
	// Create persists the event, attaches the given invitees and appends the
	// event's reference string to each invitee's user record.
	Create(ctx context.Context, event *domain.Event, inviteeIDs []int64) error
	// Delete removes the event and prunes its reference string from every
	// invitee's user record. Returns pgx.ErrNoRows when the event is absent.
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	// ListByInvitee returns the events the user is invited to, ascending by
	// start time (events without a start time last), invitees eagerly loaded.
	ListByInvitee(ctx context.Context, userID int64) ([]domain.Event, error)
	CountByInvitee(ctx context.Context, userID int64) (int, error)
	WithTx(tx pgx.Tx) EventRepository
}

type eventRepository struct {
	q querier
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{q: pool}
}

// WithTx rebinds the repository onto a transaction.
func (r *eventRepository) WithTx(tx pgx.Tx) EventRepository {
	return &eventRepository{q: tx}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event, inviteeIDs []int64) error {
	const query = `
        INSERT INTO events (title, description, status, start_time, end_time)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	if err := r.q.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Status,
		event.StartTime,
		event.EndTime,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return err
	}

	for _, userID := range inviteeIDs {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO event_invitees (event_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			event.ID, userID,
		); err != nil {
			return err
		}
	}

	invitees, err := r.loadInvitees(ctx, event.ID)
	if err != nil {
		return err
	}
	event.Invitees = invitees

	ref := event.Ref()
	for i := range invitees {
		if _, err := r.q.Exec(ctx,
			`UPDATE users SET event_refs = array_append(event_refs, $2), updated_at=NOW() WHERE id=$1`,
			invitees[i].ID, ref,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	event, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ref := event.Ref()
	for i := range event.Invitees {
		if _, err := r.q.Exec(ctx,
			`UPDATE users SET event_refs = array_remove(event_refs, $2), updated_at=NOW() WHERE id=$1`,
			event.Invitees[i].ID, ref,
		); err != nil {
			return err
		}
	}

	cmd, err := r.q.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	const query = `
        SELECT id, title, description, status, start_time, end_time, created_at, updated_at
        FROM events WHERE id=$1`

	var event domain.Event
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Status,
		&event.StartTime,
		&event.EndTime,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}

	invitees, err := r.loadInvitees(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.Invitees = invitees
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context) ([]domain.Event, error) {
	const query = `
        SELECT id, title, description, status, start_time, end_time, created_at, updated_at
        FROM events ORDER BY start_time ASC NULLS LAST, id ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	return r.attachInvitees(ctx, events)
}

func (r *eventRepository) ListByInvitee(ctx context.Context, userID int64) ([]domain.Event, error) {
	const query = `
        SELECT e.id, e.title, e.description, e.status, e.start_time, e.end_time, e.created_at, e.updated_at
        FROM events e
        JOIN event_invitees ei ON ei.event_id = e.id
        WHERE ei.user_id = $1
        ORDER BY e.start_time ASC NULLS LAST, e.id ASC`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	return r.attachInvitees(ctx, events)
}

func (r *eventRepository) CountByInvitee(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_invitees WHERE user_id=$1`, userID,
	).Scan(&count)
	return count, err
}

func (r *eventRepository) loadInvitees(ctx context.Context, eventID int64) ([]domain.User, error) {
	const query = `
        SELECT u.id, u.name, u.event_refs, u.created_at, u.updated_at
        FROM users u
        JOIN event_invitees ei ON ei.user_id = u.id
        WHERE ei.event_id = $1
        ORDER BY u.id`

	rows, err := r.q.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (r *eventRepository) attachInvitees(ctx context.Context, events []domain.Event) ([]domain.Event, error) {
	for i := range events {
		invitees, err := r.loadInvitees(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].Invitees = invitees
	}
	return events, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	defer rows.Close()
	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Status,
			&event.StartTime,
			&event.EndTime,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
