package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/wolfman30/bookline/internal/appointments"
	"github.com/wolfman30/bookline/internal/clients"
	"github.com/wolfman30/bookline/internal/providers"
	"github.com/wolfman30/bookline/internal/rooms"
	"github.com/wolfman30/bookline/internal/scheduling"
	"github.com/wolfman30/bookline/pkg/logging"
)

// slotLength is the fixed window for every chat-resolved slot. The CRUD
// API accepts arbitrary ranges; the assistant books half-hour slots.
const slotLength = 30 * time.Minute

const (
	toolCheckAvailability     = "check_availability"
	toolGetAffectedClients    = "get_affected_clients"
	toolCreateAppointment     = "create_appointment"
	toolRescheduleAppointment = "reschedule_appointment"
)

// oracleTools declares the callable operations presented to the model.
func oracleTools() []openai.Tool {
	timeProp := map[string]any{
		"type":        "string",
		"description": "Time expression such as \"2pm\", \"14:00\", or a bare hour",
	}
	dateProp := map[string]any{
		"type":        "string",
		"description": "\"today\", \"tomorrow\", or a YYYY-MM-DD date; defaults to today",
	}

	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolCheckAvailability,
				Description: "List providers free for a 30-minute slot at the given time.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"time": timeProp,
						"date": dateProp,
					},
					"required": []string{"time"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolGetAffectedClients,
				Description: "List clients with appointments for a provider on a date, or in one exact slot when a time is given.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"provider_name": map[string]any{"type": "string", "description": "Provider name or part of it"},
						"date":          dateProp,
						"time":          timeProp,
					},
					"required": []string{"provider_name", "date"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolCreateAppointment,
				Description: "Book a 30-minute appointment for a client with a provider. A room is auto-assigned when none is named.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"provider_name":    map[string]any{"type": "string", "description": "Provider name or part of it"},
						"client_name":      map[string]any{"type": "string", "description": "Client name"},
						"time":             timeProp,
						"date":             dateProp,
						"room_name":        map[string]any{"type": "string", "description": "Preferred room; optional"},
						"appointment_type": map[string]any{"type": "string", "description": "Appointment type label; optional"},
					},
					"required": []string{"provider_name", "client_name", "time"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolRescheduleAppointment,
				Description: "Move an existing appointment to a new time.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"client_name":   map[string]any{"type": "string", "description": "Client name"},
						"provider_name": map[string]any{"type": "string", "description": "Provider name or part of it"},
						"old_date":      dateProp,
						"old_time":      timeProp,
						"new_time":      timeProp,
						"new_date":      dateProp,
					},
					"required": []string{"client_name", "provider_name", "old_date", "old_time", "new_time"},
				},
			},
		},
	}
}

// toolbox executes the declared operations. Every branch, success or
// failure, comes back as text for the model to relay; only the
// oracle transport itself can hard-fail a turn.
type toolbox struct {
	providers providers.Repository
	clients   clients.Repository
	rooms     rooms.Repository
	appts     appointments.Repository
	validator *appointments.Validator
	logger    *logging.Logger
}

func newToolbox(p providers.Repository, c clients.Repository, rm rooms.Repository, a appointments.Repository, v *appointments.Validator, logger *logging.Logger) *toolbox {
	if logger == nil {
		logger = logging.Default()
	}
	return &toolbox{providers: p, clients: c, rooms: rm, appts: a, validator: v, logger: logger}
}

// Dispatch runs the named tool with JSON arguments from the model.
func (t *toolbox) Dispatch(ctx context.Context, name, rawArgs string, loc *time.Location, now time.Time) string {
	switch name {
	case toolCheckAvailability:
		var args struct {
			Time string `json:"time"`
			Date string `json:"date"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "I could not read the arguments for that request."
		}
		return t.checkAvailability(ctx, args.Time, args.Date, loc, now)
	case toolGetAffectedClients:
		var args struct {
			ProviderName string `json:"provider_name"`
			Date         string `json:"date"`
			Time         string `json:"time"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "I could not read the arguments for that request."
		}
		return t.getAffectedClients(ctx, args.ProviderName, args.Date, args.Time, loc, now)
	case toolCreateAppointment:
		var args struct {
			ProviderName    string `json:"provider_name"`
			ClientName      string `json:"client_name"`
			Time            string `json:"time"`
			Date            string `json:"date"`
			RoomName        string `json:"room_name"`
			AppointmentType string `json:"appointment_type"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "I could not read the arguments for that request."
		}
		return t.createAppointment(ctx, args.ProviderName, args.ClientName, args.Time, args.Date, args.RoomName, args.AppointmentType, loc, now)
	case toolRescheduleAppointment:
		var args struct {
			ClientName   string `json:"client_name"`
			ProviderName string `json:"provider_name"`
			OldDate      string `json:"old_date"`
			OldTime      string `json:"old_time"`
			NewTime      string `json:"new_time"`
			NewDate      string `json:"new_date"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "I could not read the arguments for that request."
		}
		return t.rescheduleAppointment(ctx, args.ClientName, args.ProviderName, args.OldDate, args.OldTime, args.NewTime, args.NewDate, loc, now)
	default:
		return fmt.Sprintf("Unknown operation %q.", name)
	}
}

func (t *toolbox) checkAvailability(ctx context.Context, timeExpr, dateExpr string, loc *time.Location, now time.Time) string {
	start, err := scheduling.ResolveTime(timeExpr, dateExpr, loc, now)
	if err != nil {
		return parseHint(timeExpr, dateExpr)
	}
	end := start.Add(slotLength)

	provs, err := t.providers.List(ctx)
	if err != nil {
		return t.fail("listing providers", err)
	}
	if len(provs) == 0 {
		return "There are no providers configured yet."
	}

	booked, err := t.appts.ListActiveInRange(ctx, start, end)
	if err != nil {
		return t.fail("checking the schedule", err)
	}
	busy := make(map[uuid.UUID]bool, len(booked))
	for _, a := range booked {
		busy[a.ProviderID] = true
	}

	var free []string
	for _, p := range provs {
		if !busy[p.ID] {
			free = append(free, p.Name)
		}
	}
	when := formatSlot(start, loc)
	if len(free) == 0 {
		return fmt.Sprintf("No providers are free at %s.", when)
	}
	return fmt.Sprintf("Available at %s: %s.", when, strings.Join(free, ", "))
}

func (t *toolbox) getAffectedClients(ctx context.Context, providerName, dateExpr, timeExpr string, loc *time.Location, now time.Time) string {
	provs, err := t.providers.List(ctx)
	if err != nil {
		return t.fail("listing providers", err)
	}
	matches := scheduling.MatchProviders(providerName, provs)
	if len(matches) == 0 {
		return fmt.Sprintf("No provider matching %q was found.", providerName)
	}

	var start, end time.Time
	if strings.TrimSpace(timeExpr) != "" {
		start, err = scheduling.ResolveTime(timeExpr, dateExpr, loc, now)
		if err != nil {
			return parseHint(timeExpr, dateExpr)
		}
		end = start.Add(slotLength)
	} else {
		day, derr := scheduling.ResolveDay(dateExpr, loc, now)
		if derr != nil {
			return parseHint(timeExpr, dateExpr)
		}
		start, end = scheduling.DayBounds(day, loc)
	}

	clientList, err := t.clients.List(ctx)
	if err != nil {
		return t.fail("listing clients", err)
	}
	names := make(map[uuid.UUID]string, len(clientList))
	for _, c := range clientList {
		names[c.ID] = c.FullName()
	}

	inRange, err := t.appts.ListActiveInRange(ctx, start, end)
	if err != nil {
		return t.fail("checking the schedule", err)
	}

	var lines []string
	for _, p := range matches {
		var entries []string
		for _, a := range inRange {
			if a.ProviderID != p.ID {
				continue
			}
			name := names[a.ClientID]
			if name == "" {
				name = "Unknown client"
			}
			entries = append(entries, fmt.Sprintf("%s at %s", name, a.StartTime.In(loc).Format("3:04 PM")))
		}
		if len(entries) == 0 {
			lines = append(lines, fmt.Sprintf("%s has no appointments in that window.", p.Name))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s.", p.Name, strings.Join(entries, "; ")))
	}
	return strings.Join(lines, " ")
}

func (t *toolbox) createAppointment(ctx context.Context, providerName, clientName, timeExpr, dateExpr, roomName, apptType string, loc *time.Location, now time.Time) string {
	provs, err := t.providers.List(ctx)
	if err != nil {
		return t.fail("listing providers", err)
	}
	provider, clarify := pickProvider(providerName, provs)
	if clarify != "" {
		return clarify
	}

	clientList, err := t.clients.List(ctx)
	if err != nil {
		return t.fail("listing clients", err)
	}
	client := scheduling.MatchClient(clientName, clientList)
	if client == nil {
		return "No clients are registered yet, so I can't book that appointment."
	}

	start, err := scheduling.ResolveTime(timeExpr, dateExpr, loc, now)
	if err != nil {
		return parseHint(timeExpr, dateExpr)
	}
	end := start.Add(slotLength)

	room, roomMsg := t.pickRoom(ctx, roomName, start, end)
	if roomMsg != "" {
		return roomMsg
	}

	check := appointments.ScheduleCheck{
		ClientID:   client.ID,
		ProviderID: provider.ID,
		Start:      start,
		End:        end,
	}
	if room != nil {
		check.RoomID = &room.ID
	}
	if err := t.validator.Validate(ctx, check); err != nil {
		var conflict *appointments.ConflictError
		if errors.As(err, &conflict) {
			return conflict.Message + "."
		}
		return t.fail("validating the slot", err)
	}

	req := appointments.CreateRequest{
		ClientID:   client.ID,
		ProviderID: provider.ID,
		StartTime:  start,
		EndTime:    end,
	}
	if room != nil {
		req.RoomID = &room.ID
	}
	if strings.TrimSpace(apptType) != "" {
		req.AppointmentType = &apptType
	}
	if _, err := t.appts.Create(ctx, req); err != nil {
		return t.fail("saving the appointment", err)
	}

	msg := fmt.Sprintf("Booked %s with %s on %s", client.FullName(), provider.Name, formatSlot(start, loc))
	if room != nil {
		msg += fmt.Sprintf(" in %s", room.Name)
	}
	if strings.TrimSpace(apptType) != "" {
		msg += fmt.Sprintf(" (%s)", apptType)
	}
	return msg + "."
}

func (t *toolbox) rescheduleAppointment(ctx context.Context, clientName, providerName, oldDate, oldTime, newTime, newDate string, loc *time.Location, now time.Time) string {
	provs, err := t.providers.List(ctx)
	if err != nil {
		return t.fail("listing providers", err)
	}
	provider, clarify := pickProvider(providerName, provs)
	if clarify != "" {
		return clarify
	}

	clientList, err := t.clients.List(ctx)
	if err != nil {
		return t.fail("listing clients", err)
	}
	client := scheduling.MatchClient(clientName, clientList)
	if client == nil {
		return "No clients are registered yet, so there is nothing to reschedule."
	}

	oldStart, err := scheduling.ResolveTime(oldTime, oldDate, loc, now)
	if err != nil {
		return parseHint(oldTime, oldDate)
	}

	booked, err := t.appts.ListActiveForClient(ctx, client.ID)
	if err != nil {
		return t.fail("loading the client's appointments", err)
	}
	var candidates []scheduling.Range
	byID := make(map[uuid.UUID]appointments.Appointment)
	for _, a := range booked {
		if a.ProviderID != provider.ID {
			continue
		}
		candidates = append(candidates, scheduling.Range{ID: a.ID, Start: a.StartTime, End: a.EndTime})
		byID[a.ID] = a
	}
	target := scheduling.FindOverlapping(oldStart, oldStart.Add(slotLength), candidates)
	if target == nil {
		return fmt.Sprintf("No appointment for %s with %s around %s was found.",
			client.FullName(), provider.Name, formatSlot(oldStart, loc))
	}
	existing := byID[target.ID]

	newStart, err := scheduling.ResolveTime(newTime, newDate, loc, now)
	if err != nil {
		return parseHint(newTime, newDate)
	}
	newEnd := newStart.Add(slotLength)

	check := appointments.ScheduleCheck{
		ClientID:   client.ID,
		ProviderID: provider.ID,
		RoomID:     existing.RoomID,
		Start:      newStart,
		End:        newEnd,
		ExcludeID:  &existing.ID,
	}
	if err := t.validator.Validate(ctx, check); err != nil {
		var conflict *appointments.ConflictError
		if errors.As(err, &conflict) {
			return conflict.Message + "."
		}
		return t.fail("validating the new slot", err)
	}

	patch := appointments.Patch{StartTime: &newStart, EndTime: &newEnd}
	if _, err := t.appts.Update(ctx, existing.ID, patch); err != nil {
		return t.fail("updating the appointment", err)
	}

	return fmt.Sprintf("Moved %s's appointment with %s from %s to %s.",
		client.FullName(), provider.Name, formatSlot(existing.StartTime, loc), formatSlot(newStart, loc))
}

// pickRoom honors a named room or auto-selects the first free one. The
// second return is a user-facing message when no room works out; both
// returns nil/"" means book without a room (none configured).
func (t *toolbox) pickRoom(ctx context.Context, roomName string, start, end time.Time) (*rooms.Room, string) {
	roomList, err := t.rooms.List(ctx)
	if err != nil {
		return nil, t.fail("listing rooms", err)
	}

	if name := strings.TrimSpace(roomName); name != "" {
		for i, room := range roomList {
			if strings.Contains(strings.ToLower(room.Name), strings.ToLower(name)) {
				return &roomList[i], ""
			}
		}
		return nil, fmt.Sprintf("No room matching %q was found.", roomName)
	}

	if len(roomList) == 0 {
		return nil, ""
	}
	for i, room := range roomList {
		booked, err := t.appts.ListActiveForRoom(ctx, room.ID)
		if err != nil {
			return nil, t.fail("checking room availability", err)
		}
		ranges := make([]scheduling.Range, 0, len(booked))
		for _, a := range booked {
			ranges = append(ranges, scheduling.Range{ID: a.ID, Start: a.StartTime, End: a.EndTime})
		}
		if !scheduling.HasOverlap(start, end, ranges) {
			return &roomList[i], ""
		}
	}
	return nil, "No rooms are free at that time."
}

// pickProvider resolves a fuzzy provider name. A non-empty second return
// is clarification text for the user (none or many matched).
func pickProvider(query string, provs []providers.Provider) (*providers.Provider, string) {
	matches := scheduling.MatchProviders(query, provs)
	switch len(matches) {
	case 0:
		return nil, fmt.Sprintf("No provider matching %q was found.", query)
	case 1:
		return &matches[0], ""
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return nil, fmt.Sprintf("Multiple providers match %q: %s. Which one did you mean?", query, strings.Join(names, ", "))
	}
}

func (t *toolbox) fail(action string, err error) string {
	t.logger.Error("chat tool failed", "action", action, "error", err)
	return fmt.Sprintf("Sorry, something went wrong while %s. Please try again.", action)
}

func parseHint(timeExpr, dateExpr string) string {
	return fmt.Sprintf("I couldn't understand the time %q with date %q. Try a time like \"2pm\" or \"14:00\", and a date of \"today\", \"tomorrow\", or YYYY-MM-DD.", timeExpr, dateExpr)
}

func formatSlot(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Monday, January 2 at 3:04 PM")
}
