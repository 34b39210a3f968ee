package rooms

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository keeps rooms in a map. Used by tests and local
// development without Postgres.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Room
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[uuid.UUID]*Room)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	capacity := 1
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	now := time.Now().UTC()
	room := &Room{
		ID:        uuid.New(),
		Name:      req.Name,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.items[room.ID] = room
	r.mu.Unlock()

	clone := *room
	return &clone, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *room
	return &clone, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Room, 0, len(r.items))
	for _, room := range r.items {
		items = append(items, *room)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		room.Name = *patch.Name
	}
	if patch.Capacity != nil {
		room.Capacity = *patch.Capacity
	}
	room.UpdatedAt = time.Now().UTC()

	clone := *room
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
