package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository keeps appointments in a map. Used by tests and local
// development without Postgres.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Appointment
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[uuid.UUID]*Appointment)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	priority := 0
	if req.Priority != nil {
		priority = *req.Priority
	}
	status := "scheduled"
	if req.Status != nil {
		status = *req.Status
	}
	now := time.Now().UTC()
	a := &Appointment{
		ID:              uuid.New(),
		ClientID:        req.ClientID,
		ProviderID:      req.ProviderID,
		RoomID:          req.RoomID,
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime.UTC(),
		AppointmentType: req.AppointmentType,
		Priority:        priority,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	r.mu.Lock()
	r.items[a.ID] = a
	r.mu.Unlock()

	clone := *a
	return &clone, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	return r.collect(func(a *Appointment) bool {
		if filter.ClientID != nil && a.ClientID != *filter.ClientID {
			return false
		}
		if filter.ProviderID != nil && a.ProviderID != *filter.ProviderID {
			return false
		}
		if filter.RoomID != nil && (a.RoomID == nil || *a.RoomID != *filter.RoomID) {
			return false
		}
		if filter.Status != nil && a.Status != *filter.Status {
			return false
		}
		return true
	}), nil
}

func (r *InMemoryRepository) ListActiveForClient(ctx context.Context, clientID uuid.UUID) ([]Appointment, error) {
	return r.collect(func(a *Appointment) bool {
		return a.ClientID == clientID && !a.Canceled()
	}), nil
}

func (r *InMemoryRepository) ListActiveForProvider(ctx context.Context, providerID uuid.UUID) ([]Appointment, error) {
	return r.collect(func(a *Appointment) bool {
		return a.ProviderID == providerID && !a.Canceled()
	}), nil
}

func (r *InMemoryRepository) ListActiveForRoom(ctx context.Context, roomID uuid.UUID) ([]Appointment, error) {
	return r.collect(func(a *Appointment) bool {
		return a.RoomID != nil && *a.RoomID == roomID && !a.Canceled()
	}), nil
}

func (r *InMemoryRepository) ListActiveInRange(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	return r.collect(func(a *Appointment) bool {
		return a.StartTime.Before(end) && a.EndTime.After(start) && !a.Canceled()
	}), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.ClientID != nil {
		a.ClientID = *patch.ClientID
	}
	if patch.ProviderID != nil {
		a.ProviderID = *patch.ProviderID
	}
	if patch.RoomID != nil {
		a.RoomID = patch.RoomID
	}
	if patch.StartTime != nil {
		a.StartTime = patch.StartTime.UTC()
	}
	if patch.EndTime != nil {
		a.EndTime = patch.EndTime.UTC()
	}
	if patch.AppointmentType != nil {
		a.AppointmentType = patch.AppointmentType
	}
	if patch.Priority != nil {
		a.Priority = *patch.Priority
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	a.UpdatedAt = time.Now().UTC()

	clone := *a
	return &clone, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *InMemoryRepository) collect(keep func(*Appointment) bool) []Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []Appointment
	for _, a := range r.items {
		if keep(a) {
			items = append(items, *a)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].StartTime.Before(items[j].StartTime) })
	return items
}
