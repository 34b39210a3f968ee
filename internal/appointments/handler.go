package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/bookline/internal/clients"
	"github.com/wolfman30/bookline/internal/providers"
	"github.com/wolfman30/bookline/internal/rooms"
	"github.com/wolfman30/bookline/pkg/logging"
)

// Handler exposes appointment CRUD over HTTP. Create and update run
// through the conflict validator before touching the store.
type Handler struct {
	repo      Repository
	validator *Validator
	logger    *logging.Logger
}

// NewHandler creates an appointment handler.
func NewHandler(repo Repository, validator *Validator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, validator: validator, logger: logger}
}

// Routes mounts the appointment endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{appointmentID}", h.Get)
	r.Patch("/{appointmentID}", h.Update)
	r.Delete("/{appointmentID}", h.Delete)
	return r
}

// Create handles POST /appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ClientID == uuid.Nil || req.ProviderID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "client_id and provider_id are required")
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		h.writeError(w, http.StatusBadRequest, "start_time and end_time are required")
		return
	}
	if req.Priority != nil && (*req.Priority < 0 || *req.Priority > 2) {
		h.writeError(w, http.StatusBadRequest, "Priority must be between 0 and 2")
		return
	}

	check := ScheduleCheck{
		ClientID:   req.ClientID,
		ProviderID: req.ProviderID,
		RoomID:     req.RoomID,
		Start:      req.StartTime,
		End:        req.EndTime,
	}
	if err := h.validator.Validate(r.Context(), check); err != nil {
		h.respondValidationError(w, err)
		return
	}

	appt, err := h.repo.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create appointment", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to create appointment")
		return
	}
	h.writeJSON(w, http.StatusCreated, appt)
}

// List handles GET /appointments with optional client_id, provider_id,
// room_id, and status filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	q := r.URL.Query()
	for param, dst := range map[string]**uuid.UUID{
		"client_id":   &filter.ClientID,
		"provider_id": &filter.ProviderID,
		"room_id":     &filter.RoomID,
	} {
		if raw := q.Get(param); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				h.writeError(w, http.StatusBadRequest, "Invalid "+param)
				return
			}
			*dst = &id
		}
	}
	if raw := q.Get("status"); raw != "" {
		filter.Status = &raw
	}

	items, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list appointments")
		return
	}
	if items == nil {
		items = []Appointment{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// Get handles GET /appointments/{appointmentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	appt, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, appt)
}

// Update handles PATCH /appointments/{appointmentID}. When the patch
// touches any scheduling field the merged appointment is re-validated,
// excluding its own prior occurrence from the conflict set.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Empty() {
		h.writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if patch.Priority != nil && (*patch.Priority < 0 || *patch.Priority > 2) {
		h.writeError(w, http.StatusBadRequest, "Priority must be between 0 and 2")
		return
	}

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}

	if touchesSchedule(patch) {
		check := mergedCheck(existing, patch)
		// A patch that cancels the appointment frees the slot; nothing to check.
		if !(patch.Status != nil && *patch.Status == StatusCanceled) {
			if err := h.validator.Validate(r.Context(), check); err != nil {
				h.respondValidationError(w, err)
				return
			}
		}
	}

	appt, err := h.repo.Update(r.Context(), id, patch)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, appt)
}

// Delete handles DELETE /appointments/{appointmentID}. Hard delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// touchesSchedule reports whether the patch can change conflict outcomes.
func touchesSchedule(p Patch) bool {
	return p.ClientID != nil || p.ProviderID != nil || p.RoomID != nil ||
		p.StartTime != nil || p.EndTime != nil || p.Status != nil
}

// mergedCheck overlays the patch on the stored appointment to produce the
// effective slot to validate.
func mergedCheck(existing *Appointment, p Patch) ScheduleCheck {
	check := ScheduleCheck{
		ClientID:   existing.ClientID,
		ProviderID: existing.ProviderID,
		RoomID:     existing.RoomID,
		Start:      existing.StartTime,
		End:        existing.EndTime,
		ExcludeID:  &existing.ID,
	}
	if p.ClientID != nil {
		check.ClientID = *p.ClientID
	}
	if p.ProviderID != nil {
		check.ProviderID = *p.ProviderID
	}
	if p.RoomID != nil {
		check.RoomID = p.RoomID
	}
	if p.StartTime != nil {
		check.Start = *p.StartTime
	}
	if p.EndTime != nil {
		check.End = *p.EndTime
	}
	return check
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid appointment id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondValidationError(w http.ResponseWriter, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		h.writeError(w, http.StatusConflict, conflict.Message)
	case errors.Is(err, ErrInvalidRange):
		h.writeError(w, http.StatusBadRequest, "start_time must be before end_time")
	case errors.Is(err, clients.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Client not found")
	case errors.Is(err, providers.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Provider not found")
	case errors.Is(err, rooms.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Room not found")
	default:
		h.logger.Error("appointment validation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Appointment validation failed")
	}
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	h.logger.Error("appointment lookup failed", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Appointment lookup failed")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
