package providers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/bookline/pkg/logging"
)

// Handler exposes provider CRUD over HTTP.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a provider handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts the provider endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{providerID}", h.Get)
	r.Patch("/{providerID}", h.Update)
	r.Delete("/{providerID}", h.Delete)
	return r
}

// Create handles POST /providers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.writeError(w, http.StatusBadRequest, "Provider name is required")
		return
	}

	provider, err := h.repo.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create provider", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to create provider")
		return
	}
	h.writeJSON(w, http.StatusCreated, provider)
}

// List handles GET /providers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list providers", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list providers")
		return
	}
	if items == nil {
		items = []Provider{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// Get handles GET /providers/{providerID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	provider, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, provider)
}

// Update handles PATCH /providers/{providerID}.
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

	provider, err := h.repo.Update(r.Context(), id, patch)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, provider)
}

// Delete handles DELETE /providers/{providerID}.
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

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "providerID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid provider id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Provider not found")
		return
	}
	h.logger.Error("provider lookup failed", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Provider lookup failed")
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
