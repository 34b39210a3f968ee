package providers

import (
	"time"

	"github.com/google/uuid"
)

// Provider is a staff member clients book time with.
type Provider struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Specialization *string   `json:"specialization"`
	Color          *string   `json:"color"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateRequest is the payload for creating a provider.
type CreateRequest struct {
	Name           string  `json:"name"`
	Specialization *string `json:"specialization"`
	Color          *string `json:"color"`
}

// Patch carries optional field updates; nil means leave unchanged.
type Patch struct {
	Name           *string `json:"name"`
	Specialization *string `json:"specialization"`
	Color          *string `json:"color"`
}

// Empty reports whether the patch carries no updates.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Specialization == nil && p.Color == nil
}
