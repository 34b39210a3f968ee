package providers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository keeps providers in a map. Used by tests and local
// development without Postgres.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Provider
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[uuid.UUID]*Provider)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req CreateRequest) (*Provider, error) {
	now := time.Now().UTC()
	p := &Provider{
		ID:             uuid.New(),
		Name:           req.Name,
		Specialization: req.Specialization,
		Color:          req.Color,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	r.mu.Lock()
	r.items[p.ID] = p
	r.mu.Unlock()

	clone := *p
	return &clone, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Provider, 0, len(r.items))
	for _, p := range r.items {
		items = append(items, *p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Specialization != nil {
		p.Specialization = patch.Specialization
	}
	if patch.Color != nil {
		p.Color = patch.Color
	}
	p.UpdatedAt = time.Now().UTC()

	clone := *p
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
