package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"buyorder-alerts/internal/store"
)

type handler struct {
	store  *store.Store
	server *Server
	logger zerolog.Logger
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("buywatch is running"))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) listSources(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"sources": h.store.List()})
}

type createSourceRequest struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Faction string `json:"faction"`
	Enabled *bool  `json:"enabled"`
}

func (h *handler) createSource(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	src, err := h.store.Add(req.Name, req.URL, req.Faction, enabled)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, src)
}

func (h *handler) getSource(w http.ResponseWriter, r *http.Request) {
	src, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, src)
}

type updateSourceRequest struct {
	Name    *string `json:"name"`
	URL     *string `json:"url"`
	Faction *string `json:"faction"`
	Enabled *bool   `json:"enabled"`
}

func (h *handler) updateSource(w http.ResponseWriter, r *http.Request) {
	var req updateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	src, err := h.store.Apply(r.PathValue("id"), store.Update{
		Name:    req.Name,
		URL:     req.URL,
		Faction: req.Faction,
		Enabled: req.Enabled,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, src)
}

func (h *handler) deleteSource(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("id")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) triggerCheck(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.store.Get(id); err != nil {
		respondStoreError(w, err)
		return
	}
	if h.server.svc == nil {
		respondError(w, http.StatusServiceUnavailable, "checks not available")
		return
	}

	h.server.triggerCheck(id)
	respondJSON(w, http.StatusAccepted, map[string]any{"status": "check scheduled"})
}
