package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/bookline/internal/clients"
	"github.com/wolfman30/bookline/internal/providers"
	"github.com/wolfman30/bookline/internal/rooms"
)

type validatorFixture struct {
	providers *providers.InMemoryRepository
	clients   *clients.InMemoryRepository
	rooms     *rooms.InMemoryRepository
	appts     *InMemoryRepository
	validator *Validator

	provider providers.Provider
	client   clients.Client
	room     rooms.Room
}

func newValidatorFixture(t *testing.T) *validatorFixture {
	t.Helper()
	ctx := context.Background()
	f := &validatorFixture{
		providers: providers.NewInMemoryRepository(),
		clients:   clients.NewInMemoryRepository(),
		rooms:     rooms.NewInMemoryRepository(),
		appts:     NewInMemoryRepository(),
	}
	f.validator = NewValidator(f.providers, f.clients, f.rooms, f.appts)

	p, err := f.providers.Create(ctx, providers.CreateRequest{Name: "Ana Torres"})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	f.provider = *p

	c, err := f.clients.Create(ctx, clients.CreateRequest{FirstName: "Maya", LastName: "Chen"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	f.client = *c

	r, err := f.rooms.Create(ctx, rooms.CreateRequest{Name: "Room A"})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	f.room = *r
	return f
}

func (f *validatorFixture) book(t *testing.T, req CreateRequest) Appointment {
	t.Helper()
	a, err := f.appts.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return *a
}

func slot(hour int) (time.Time, time.Time) {
	start := time.Date(2026, time.March, 2, hour, 0, 0, 0, time.UTC)
	return start, start.Add(30 * time.Minute)
}

func TestValidateBookableSlot(t *testing.T) {
	f := newValidatorFixture(t)
	start, end := slot(14)

	err := f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   f.client.ID,
		ProviderID: f.provider.ID,
		RoomID:     &f.room.ID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		t.Fatalf("expected a bookable slot, got %v", err)
	}
}

func TestValidateInvalidRange(t *testing.T) {
	f := newValidatorFixture(t)
	start, end := slot(14)

	for _, tc := range []struct {
		name       string
		start, end time.Time
	}{
		{"inverted", end, start},
		{"empty", start, start},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := f.validator.Validate(context.Background(), ScheduleCheck{
				ClientID:   f.client.ID,
				ProviderID: f.provider.ID,
				Start:      tc.start,
				End:        tc.end,
			})
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestValidateMissingReferences(t *testing.T) {
	f := newValidatorFixture(t)
	start, end := slot(14)
	missing := uuid.New()

	err := f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   missing,
		ProviderID: f.provider.ID,
		Start:      start,
		End:        end,
	})
	if !errors.Is(err, clients.ErrNotFound) {
		t.Fatalf("expected client not-found, got %v", err)
	}

	err = f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   f.client.ID,
		ProviderID: missing,
		Start:      start,
		End:        end,
	})
	if !errors.Is(err, providers.ErrNotFound) {
		t.Fatalf("expected provider not-found, got %v", err)
	}

	err = f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   f.client.ID,
		ProviderID: f.provider.ID,
		RoomID:     &missing,
		Start:      start,
		End:        end,
	})
	if !errors.Is(err, rooms.ErrNotFound) {
		t.Fatalf("expected room not-found, got %v", err)
	}
}

func TestValidateClientConflict(t *testing.T) {
	f := newValidatorFixture(t)
	start, end := slot(14)
	f.book(t, CreateRequest{ClientID: f.client.ID, ProviderID: f.provider.ID, StartTime: start, EndTime: end})

	other, err := f.providers.Create(context.Background(), providers.CreateRequest{Name: "Lucas Reed"})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	verr := f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   f.client.ID,
		ProviderID: other.ID,
		Start:      start.Add(15 * time.Minute),
		End:        end.Add(15 * time.Minute),
	})
	var conflict *ConflictError
	if !errors.As(verr, &conflict) {
		t.Fatalf("expected a conflict, got %v", verr)
	}
	if conflict.Dimension != "client" {
		t.Fatalf("expected a client conflict, got %q", conflict.Dimension)
	}
}

func TestValidateProviderConflict(t *testing.T) {
	f := newValidatorFixture(t)
	start, end := slot(14)
	f.book(t, CreateRequest{ClientID: f.client.ID, ProviderID: f.provider.ID, StartTime: start, EndTime: end})

	other, err := f.clients.Create(context.Background(), clients.CreateRequest{FirstName: "Jo", LastName: "Ward"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	verr := f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   other.ID,
		ProviderID: f.provider.ID,
		Start:      start,
		End:        end,
	})
	var conflict *ConflictError
	if !errors.As(verr, &conflict) {
		t.Fatalf("expected a conflict, got %v", verr)
	}
	if conflict.Dimension != "provider" {
		t.Fatalf("expected a provider conflict, got %q", conflict.Dimension)
	}
}

func TestValidateRoomConflict(t *testing.T) {
	f := newValidatorFixture(t)
	ctx := context.Background()
	start, end := slot(14)

	otherProvider, err := f.providers.Create(ctx, providers.CreateRequest{Name: "Lucas Reed"})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	otherClient, err := f.clients.Create(ctx, clients.CreateRequest{FirstName: "Jo", LastName: "Ward"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	f.book(t, CreateRequest{
		ClientID: otherClient.ID, ProviderID: otherProvider.ID, RoomID: &f.room.ID,
		StartTime: start, EndTime: end,
	})

	verr := f.validator.Validate(ctx, ScheduleCheck{
		ClientID:   f.client.ID,
		ProviderID: f.provider.ID,
		RoomID:     &f.room.ID,
		Start:      start,
		End:        end,
	})
	var conflict *ConflictError
	if !errors.As(verr, &conflict) {
		t.Fatalf("expected a conflict, got %v", verr)
	}
	if conflict.Dimension != "room" {
		t.Fatalf("expected a room conflict, got %q", conflict.Dimension)
	}
}

func TestValidateClientConflictWinsOverProvider(t *testing.T) {
	f := newValidatorFixture(t)
	start, end := slot(14)
	f.book(t, CreateRequest{ClientID: f.client.ID, ProviderID: f.provider.ID, StartTime: start, EndTime: end})

	// Same client and same provider collide; the client check runs first.
	verr := f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   f.client.ID,
		ProviderID: f.provider.ID,
		Start:      start,
		End:        end,
	})
	var conflict *ConflictError
	if !errors.As(verr, &conflict) {
		t.Fatalf("expected a conflict, got %v", verr)
	}
	if conflict.Dimension != "client" {
		t.Fatalf("client check should short-circuit first, got %q", conflict.Dimension)
	}
}

func TestValidateIgnoresCanceled(t *testing.T) {
	f := newValidatorFixture(t)
	start, end := slot(14)
	canceled := StatusCanceled
	f.book(t, CreateRequest{
		ClientID: f.client.ID, ProviderID: f.provider.ID,
		StartTime: start, EndTime: end, Status: &canceled,
	})

	err := f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   f.client.ID,
		ProviderID: f.provider.ID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		t.Fatalf("canceled appointments must not block the slot: %v", err)
	}
}

func TestValidateExcludesSelf(t *testing.T) {
	f := newValidatorFixture(t)
	start, end := slot(14)
	appt := f.book(t, CreateRequest{ClientID: f.client.ID, ProviderID: f.provider.ID, StartTime: start, EndTime: end})

	err := f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   f.client.ID,
		ProviderID: f.provider.ID,
		Start:      start,
		End:        end,
		ExcludeID:  &appt.ID,
	})
	if err != nil {
		t.Fatalf("an appointment must not conflict with itself: %v", err)
	}
}

func TestValidateBackToBack(t *testing.T) {
	f := newValidatorFixture(t)
	start, end := slot(14)
	f.book(t, CreateRequest{ClientID: f.client.ID, ProviderID: f.provider.ID, StartTime: start, EndTime: end})

	err := f.validator.Validate(context.Background(), ScheduleCheck{
		ClientID:   f.client.ID,
		ProviderID: f.provider.ID,
		Start:      end,
		End:        end.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("back-to-back slots must not conflict: %v", err)
	}
}
