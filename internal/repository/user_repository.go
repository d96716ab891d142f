package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/calendar-service/internal/domain"
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetManyByIDs(ctx context.Context, ids []int64) ([]domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	AppendEventRef(ctx context.Context, userID int64, ref string) error
	RemoveEventRef(ctx context.Context, userID int64, ref string) error
	WithTx(tx pgx.Tx) UserRepository
}

type userRepository struct {
	q querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{q: pool}
}

// WithTx rebinds the repository onto a transaction.
func (r *userRepository) WithTx(tx pgx.Tx) UserRepository {
	return &userRepository{q: tx}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, event_refs)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

	refs := user.EventRefs
	if refs == nil {
		refs = []string{}
	}
	return r.q.QueryRow(ctx, query, user.Name, refs).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, event_refs=$2, updated_at=NOW()
        WHERE id=$3`

	refs := user.EventRefs
	if refs == nil {
		refs = []string{}
	}
	cmd, err := r.q.Exec(ctx, query, user.Name, refs, user.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, name, event_refs, created_at, updated_at
        FROM users WHERE id=$1`

	var user domain.User
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.EventRefs,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetManyByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	const query = `
        SELECT id, name, event_refs, created_at, updated_at
        FROM users WHERE id = ANY($1) ORDER BY id`

	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `
        SELECT id, name, event_refs, created_at, updated_at
        FROM users ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) AppendEventRef(ctx context.Context, userID int64, ref string) error {
	const query = `
        UPDATE users SET event_refs = array_append(event_refs, $2), updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.q.Exec(ctx, query, userID, ref)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) RemoveEventRef(ctx context.Context, userID int64, ref string) error {
	const query = `
        UPDATE users SET event_refs = array_remove(event_refs, $2), updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.q.Exec(ctx, query, userID, ref)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.EventRefs,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
