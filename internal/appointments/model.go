package appointments

import (
	"time"

	"github.com/google/uuid"
)

// StatusCanceled is the one status with defined semantics: canceled
// appointments are invisible to every conflict check.
const StatusCanceled = "canceled"

// Appointment is a booked time range binding a client, a provider, and
// optionally a room. Times are stored in UTC.
type Appointment struct {
	ID              uuid.UUID  `json:"id"`
	ClientID        uuid.UUID  `json:"client_id"`
	ProviderID      uuid.UUID  `json:"provider_id"`
	RoomID          *uuid.UUID `json:"room_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	AppointmentType *string    `json:"appointment_type"`
	Priority        int        `json:"priority"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Canceled reports whether the appointment is excluded from conflict checks.
func (a Appointment) Canceled() bool {
	return a.Status == StatusCanceled
}

// CreateRequest is the payload for creating an appointment.
type CreateRequest struct {
	ClientID        uuid.UUID  `json:"client_id"`
	ProviderID      uuid.UUID  `json:"provider_id"`
	RoomID          *uuid.UUID `json:"room_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	AppointmentType *string    `json:"appointment_type"`
	Priority        *int       `json:"priority"`
	Status          *string    `json:"status"`
}

// Patch carries optional field updates; nil means leave unchanged.
type Patch struct {
	ClientID        *uuid.UUID `json:"client_id"`
	ProviderID      *uuid.UUID `json:"provider_id"`
	RoomID          *uuid.UUID `json:"room_id"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	AppointmentType *string    `json:"appointment_type"`
	Priority        *int       `json:"priority"`
	Status          *string    `json:"status"`
}

// Empty reports whether the patch carries no updates.
func (p Patch) Empty() bool {
	return p.ClientID == nil && p.ProviderID == nil && p.RoomID == nil &&
		p.StartTime == nil && p.EndTime == nil && p.AppointmentType == nil &&
		p.Priority == nil && p.Status == nil
}

// ListFilter narrows appointment listings.
type ListFilter struct {
	ClientID   *uuid.UUID
	ProviderID *uuid.UUID
	RoomID     *uuid.UUID
	Status     *string
}
