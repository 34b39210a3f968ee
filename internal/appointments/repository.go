package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the appointment does not exist.
var ErrNotFound = errors.New("appointments: not found")

// Repository provides persistence for appointments. The ListActive*
// methods exclude canceled rows; they feed the conflict checks.
type Repository interface {
	Create(ctx context.Context, req CreateRequest) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]Appointment, error)
	ListActiveForClient(ctx context.Context, clientID uuid.UUID) ([]Appointment, error)
	ListActiveForProvider(ctx context.Context, providerID uuid.UUID) ([]Appointment, error)
	ListActiveForRoom(ctx context.Context, roomID uuid.UUID) ([]Appointment, error)
	ListActiveInRange(ctx context.Context, start, end time.Time) ([]Appointment, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Appointment, error)
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

// NewRepository creates a Postgres-backed appointment repository.
func NewRepository(db DB) Repository {
	if db == nil {
		panic("appointments: db required")
	}
	return &pgRepository{db: db}
}

const apptCols = `id, client_id, provider_id, room_id, start_time, end_time,
	appointment_type, priority, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ClientID, &a.ProviderID, &a.RoomID, &a.StartTime, &a.EndTime,
		&a.AppointmentType, &a.Priority, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: scan: %w", err)
	}
	return &a, nil
}

func (r *pgRepository) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	priority := 0
	if req.Priority != nil {
		priority = *req.Priority
	}
	status := "scheduled"
	if req.Status != nil {
		status = *req.Status
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, client_id, provider_id, room_id, start_time, end_time,
			appointment_type, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING `+apptCols,
		uuid.New(), req.ClientID, req.ProviderID, req.RoomID,
		req.StartTime.UTC(), req.EndTime.UTC(),
		req.AppointmentType, priority, status, time.Now().UTC())
	return scanAppointment(row)
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *pgRepository) List(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	query := `SELECT ` + apptCols + ` FROM appointments WHERE 1=1`
	var args []any
	idx := 1
	if filter.ClientID != nil {
		query += fmt.Sprintf(` AND client_id = $%d`, idx)
		args = append(args, *filter.ClientID)
		idx++
	}
	if filter.ProviderID != nil {
		query += fmt.Sprintf(` AND provider_id = $%d`, idx)
		args = append(args, *filter.ProviderID)
		idx++
	}
	if filter.RoomID != nil {
		query += fmt.Sprintf(` AND room_id = $%d`, idx)
		args = append(args, *filter.RoomID)
		idx++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, *filter.Status)
		idx++
	}
	query += ` ORDER BY start_time`
	return r.queryMany(ctx, query, args...)
}

func (r *pgRepository) ListActiveForClient(ctx context.Context, clientID uuid.UUID) ([]Appointment, error) {
	return r.queryMany(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE client_id = $1 AND status <> $2 ORDER BY start_time`, clientID, StatusCanceled)
}

func (r *pgRepository) ListActiveForProvider(ctx context.Context, providerID uuid.UUID) ([]Appointment, error) {
	return r.queryMany(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE provider_id = $1 AND status <> $2 ORDER BY start_time`, providerID, StatusCanceled)
}

func (r *pgRepository) ListActiveForRoom(ctx context.Context, roomID uuid.UUID) ([]Appointment, error) {
	return r.queryMany(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE room_id = $1 AND status <> $2 ORDER BY start_time`, roomID, StatusCanceled)
}

func (r *pgRepository) ListActiveInRange(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	return r.queryMany(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE start_time < $2 AND end_time > $1 AND status <> $3 ORDER BY start_time`,
		start.UTC(), end.UTC(), StatusCanceled)
}

func (r *pgRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments SET
			client_id = COALESCE($2, client_id),
			provider_id = COALESCE($3, provider_id),
			room_id = COALESCE($4, room_id),
			start_time = COALESCE($5, start_time),
			end_time = COALESCE($6, end_time),
			appointment_type = COALESCE($7, appointment_type),
			priority = COALESCE($8, priority),
			status = COALESCE($9, status),
			updated_at = $10
		WHERE id = $1
		RETURNING `+apptCols,
		id, patch.ClientID, patch.ProviderID, patch.RoomID,
		utcOrNil(patch.StartTime), utcOrNil(patch.EndTime),
		patch.AppointmentType, patch.Priority, patch.Status, time.Now().UTC())
	return scanAppointment(row)
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) queryMany(ctx context.Context, query string, args ...any) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: query: %w", err)
	}
	defer rows.Close()

	var items []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
