package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestCreateProvider(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	rec := doRequest(t, h, http.MethodPost, "/", `{"name":"Ana Torres","specialization":"Dermatology"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var p Provider
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID == uuid.Nil || p.Name != "Ana Torres" {
		t.Fatalf("unexpected provider: %+v", p)
	}
	if p.Specialization == nil || *p.Specialization != "Dermatology" {
		t.Fatalf("specialization not stored: %+v", p.Specialization)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
}

func TestCreateProviderValidation(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	rec := doRequest(t, h, http.MethodPost, "/", `{"name":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Provider name is required") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rec.Code)
	}
}

func TestListProviders(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, nil)

	rec := doRequest(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected an empty array, got %s", body)
	}

	for _, name := range []string{"Lucas Reed", "Ana Torres"} {
		if _, err := repo.Create(context.Background(), CreateRequest{Name: name}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec = doRequest(t, h, http.MethodGet, "/", "")
	var items []Provider
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Ana Torres" {
		t.Fatalf("expected name-ordered list, got %+v", items)
	}
}

func TestGetProvider(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, nil)
	p, err := repo.Create(context.Background(), CreateRequest{Name: "Ana Torres"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doRequest(t, h, http.MethodGet, "/"+p.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Provider not found") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateProvider(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, nil)
	p, err := repo.Create(context.Background(), CreateRequest{Name: "Ana Torres"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doRequest(t, h, http.MethodPatch, "/"+p.ID.String(), `{"color":"#7c3aed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated Provider
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Color == nil || *updated.Color != "#7c3aed" {
		t.Fatalf("color not updated: %+v", updated.Color)
	}
	if updated.Name != "Ana Torres" {
		t.Fatalf("untouched field changed: %q", updated.Name)
	}

	rec = doRequest(t, h, http.MethodPatch, "/"+p.ID.String(), `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty patch, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No fields to update") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPatch, "/"+uuid.NewString(), `{"name":"X"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteProvider(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, nil)
	p, err := repo.Create(context.Background(), CreateRequest{Name: "Ana Torres"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doRequest(t, h, http.MethodDelete, "/"+p.ID.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodDelete, "/"+p.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
