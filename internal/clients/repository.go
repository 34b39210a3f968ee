package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the client does not exist.
var ErrNotFound = errors.New("clients: not found")

// Repository provides persistence for clients.
type Repository interface {
	Create(ctx context.Context, req CreateRequest) (*Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgRepository struct {
	db DB
}

// NewRepository creates a Postgres-backed client repository.
func NewRepository(db DB) Repository {
	if db == nil {
		panic("clients: db required")
	}
	return &pgRepository{db: db}
}

const clientCols = `id, first_name, last_name, email, phone, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("clients: scan: %w", err)
	}
	return &c, nil
}

func (r *pgRepository) Create(ctx context.Context, req CreateRequest) (*Client, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO clients (id, first_name, last_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING `+clientCols,
		uuid.New(), req.FirstName, req.LastName, req.Email, req.Phone, time.Now().UTC())
	return scanClient(row)
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	return scanClient(r.db.QueryRow(ctx, `SELECT `+clientCols+` FROM clients WHERE id = $1`, id))
}

func (r *pgRepository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientCols+` FROM clients ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("clients: list: %w", err)
	}
	defer rows.Close()

	var items []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *pgRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Client, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE clients SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			phone = COALESCE($5, phone),
			updated_at = $6
		WHERE id = $1
		RETURNING `+clientCols,
		id, patch.FirstName, patch.LastName, patch.Email, patch.Phone, time.Now().UTC())
	return scanClient(row)
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clients: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
