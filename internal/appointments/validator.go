package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/bookline/internal/clients"
	"github.com/wolfman30/bookline/internal/providers"
	"github.com/wolfman30/bookline/internal/rooms"
	"github.com/wolfman30/bookline/internal/scheduling"
)

// ErrInvalidRange rejects an inverted or empty time range before any
// conflict math runs.
var ErrInvalidRange = errors.New("appointments: start_time must be before end_time")

// ConflictError reports a double-booking on one dimension.
type ConflictError struct {
	Dimension string
	Message   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("appointments: %s conflict: %s", e.Dimension, e.Message)
}

// ScheduleCheck describes a proposed appointment slot to validate.
// ExcludeID removes the appointment's own prior occurrence from the
// candidate set so a reschedule never conflicts with itself.
type ScheduleCheck struct {
	ClientID   uuid.UUID
	ProviderID uuid.UUID
	RoomID     *uuid.UUID
	Start      time.Time
	End        time.Time
	ExcludeID  *uuid.UUID
}

// Validator gates appointment writes: referential existence first, then
// per-dimension overlap checks in a fixed order (client, provider, room),
// short-circuiting on the first failure.
//
// Validation and the subsequent write are not atomic; two concurrent
// requests can both pass and double-book the same slot.
type Validator struct {
	providers providers.Repository
	clients   clients.Repository
	rooms     rooms.Repository
	appts     Repository
}

// NewValidator wires a validator over the entity repositories.
func NewValidator(p providers.Repository, c clients.Repository, rm rooms.Repository, a Repository) *Validator {
	return &Validator{providers: p, clients: c, rooms: rm, appts: a}
}

// Validate returns nil when the slot is bookable. Failures are, in order:
// ErrInvalidRange, a wrapped not-found from the entity packages, or a
// *ConflictError naming the colliding dimension.
func (v *Validator) Validate(ctx context.Context, check ScheduleCheck) error {
	if !check.Start.Before(check.End) {
		return ErrInvalidRange
	}

	if _, err := v.clients.GetByID(ctx, check.ClientID); err != nil {
		return fmt.Errorf("appointments: client lookup: %w", err)
	}
	if _, err := v.providers.GetByID(ctx, check.ProviderID); err != nil {
		return fmt.Errorf("appointments: provider lookup: %w", err)
	}
	if check.RoomID != nil {
		if _, err := v.rooms.GetByID(ctx, *check.RoomID); err != nil {
			return fmt.Errorf("appointments: room lookup: %w", err)
		}
	}

	existing, err := v.appts.ListActiveForClient(ctx, check.ClientID)
	if err != nil {
		return err
	}
	if scheduling.HasOverlap(check.Start, check.End, toRanges(existing, check.ExcludeID)) {
		return &ConflictError{Dimension: "client", Message: "Client already has an appointment at this time"}
	}

	existing, err = v.appts.ListActiveForProvider(ctx, check.ProviderID)
	if err != nil {
		return err
	}
	if scheduling.HasOverlap(check.Start, check.End, toRanges(existing, check.ExcludeID)) {
		return &ConflictError{Dimension: "provider", Message: "Provider already has an appointment at this time"}
	}

	if check.RoomID != nil {
		existing, err = v.appts.ListActiveForRoom(ctx, *check.RoomID)
		if err != nil {
			return err
		}
		if scheduling.HasOverlap(check.Start, check.End, toRanges(existing, check.ExcludeID)) {
			return &ConflictError{Dimension: "room", Message: "Room is already booked at this time"}
		}
	}

	return nil
}

// toRanges converts appointments into overlap candidates, dropping the
// excluded appointment by identity.
func toRanges(appts []Appointment, exclude *uuid.UUID) []scheduling.Range {
	ranges := make([]scheduling.Range, 0, len(appts))
	for _, a := range appts {
		if exclude != nil && a.ID == *exclude {
			continue
		}
		ranges = append(ranges, scheduling.Range{ID: a.ID, Start: a.StartTime, End: a.EndTime})
	}
	return ranges
}
