package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the provider does not exist.
var ErrNotFound = errors.New("providers: not found")

// Repository provides persistence for providers.
type Repository interface {
	Create(ctx context.Context, req CreateRequest) (*Provider, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	List(ctx context.Context) ([]Provider, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Provider, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgRepository struct {
	db DB
}

// NewRepository creates a Postgres-backed provider repository.
func NewRepository(db DB) Repository {
	if db == nil {
		panic("providers: db required")
	}
	return &pgRepository{db: db}
}

const providerCols = `id, name, specialization, color, created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Name, &p.Specialization, &p.Color, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("providers: scan: %w", err)
	}
	return &p, nil
}

func (r *pgRepository) Create(ctx context.Context, req CreateRequest) (*Provider, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO providers (id, name, specialization, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+providerCols,
		uuid.New(), req.Name, req.Specialization, req.Color, time.Now().UTC())
	return scanProvider(row)
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return scanProvider(r.db.QueryRow(ctx, `SELECT `+providerCols+` FROM providers WHERE id = $1`, id))
}

func (r *pgRepository) List(ctx context.Context) ([]Provider, error) {
	rows, err := r.db.Query(ctx, `SELECT `+providerCols+` FROM providers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("providers: list: %w", err)
	}
	defer rows.Close()

	var items []Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r *pgRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Provider, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE providers SET
			name = COALESCE($2, name),
			specialization = COALESCE($3, specialization),
			color = COALESCE($4, color),
			updated_at = $5
		WHERE id = $1
		RETURNING `+providerCols,
		id, patch.Name, patch.Specialization, patch.Color, time.Now().UTC())
	return scanProvider(row)
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("providers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
