package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the room does not exist.
var ErrNotFound = errors.New("rooms: not found")

// Repository provides persistence for rooms.
type Repository interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Room, error)
	List(ctx context.Context) ([]Room, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Room, error)
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

// NewRepository creates a Postgres-backed room repository.
func NewRepository(db DB) Repository {
	if db == nil {
		panic("rooms: db required")
	}
	return &pgRepository{db: db}
}

const roomCols = `id, name, capacity, created_at, updated_at`

func scanRoom(row pgx.Row) (*Room, error) {
	var room Room
	err := row.Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rooms: scan: %w", err)
	}
	return &room, nil
}

func (r *pgRepository) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	capacity := 1
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO rooms (id, name, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+roomCols,
		uuid.New(), req.Name, capacity, time.Now().UTC())
	return scanRoom(row)
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	return scanRoom(r.db.QueryRow(ctx, `SELECT `+roomCols+` FROM rooms WHERE id = $1`, id))
}

func (r *pgRepository) List(ctx context.Context) ([]Room, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roomCols+` FROM rooms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("rooms: list: %w", err)
	}
	defer rows.Close()

	var items []Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *room)
	}
	return items, rows.Err()
}

func (r *pgRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Room, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE rooms SET
			name = COALESCE($2, name),
			capacity = COALESCE($3, capacity),
			updated_at = $4
		WHERE id = $1
		RETURNING `+roomCols,
		id, patch.Name, patch.Capacity, time.Now().UTC())
	return scanRoom(row)
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("rooms: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
