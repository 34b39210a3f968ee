package rooms

import (
	"time"

	"github.com/google/uuid"
)

// Room is a bookable physical space.
type Room struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the payload for creating a room. Capacity defaults to 1.
type CreateRequest struct {
	Name     string `json:"name"`
	Capacity *int   `json:"capacity"`
}

// Patch carries optional field updates; nil means leave unchanged.
type Patch struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
}

// Empty reports whether the patch carries no updates.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Capacity == nil
}
