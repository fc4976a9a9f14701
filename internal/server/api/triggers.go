package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/argus/internal/store"
)

// TriggersHandler handles HTTP requests for trigger resources.
type TriggersHandler struct {
	store *store.Store
}

// NewTriggersHandler creates a new TriggersHandler with the given store.
func NewTriggersHandler(s *store.Store) *TriggersHandler {
	return &TriggersHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *TriggersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/triggers or /api/triggers/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/triggers")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createTriggerRequest struct {
	Class      string          `json:"class"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type updateTriggerRequest struct {
	Class      string          `json:"class"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type triggerResponse struct {
	ID         string          `json:"id"`
	Class      string          `json:"class"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listTriggersResponse struct {
	Triggers []triggerResponse `json:"triggers"`
}

// toTriggerResponse converts a store.Trigger to a triggerResponse.
func toTriggerResponse(t *store.Trigger) triggerResponse {
	return triggerResponse{
		ID:         t.ID,
		Class:      t.Class,
		PluginName: t.PluginName,
		ActionName: t.ActionName,
		Config:     t.Config,
		Enabled:    t.Enabled,
		CreatedAt:  t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// list handles GET /api/triggers and returns all triggers.
func (h *TriggersHandler) list(w http.ResponseWriter, r *http.Request) {
	triggers, err := h.store.Triggers().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list triggers")
		return
	}

	response := listTriggersResponse{
		Triggers: make([]triggerResponse, 0, len(triggers)),
	}
	for _, t := range triggers {
		response.Triggers = append(response.Triggers, toTriggerResponse(t))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/triggers/{id} and returns a single trigger.
func (h *TriggersHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	trigger, err := h.store.Triggers().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Trigger not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get trigger")
		return
	}

	writeJSON(w, http.StatusOK, toTriggerResponse(trigger))
}

// create handles POST /api/triggers and creates a new trigger.
func (h *TriggersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate required fields
	if req.Class == "" {
		writeError(w, http.StatusBadRequest, "Class is required")
		return
	}
	if req.PluginName == "" {
		writeError(w, http.StatusBadRequest, "Plugin name is required")
		return
	}
	if req.ActionName == "" {
		writeError(w, http.StatusBadRequest, "Action name is required")
		return
	}

	// New triggers are enabled unless the request says otherwise
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	trigger := &store.Trigger{
		ID:         uuid.New().String(),
		Class:      req.Class,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    enabled,
	}

	if err := h.store.Triggers().Create(trigger); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create trigger")
		return
	}

	writeJSON(w, http.StatusCreated, toTriggerResponse(trigger))
}

// update handles PUT /api/triggers/{id} and updates an existing trigger.
func (h *TriggersHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	trigger, err := h.store.Triggers().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Trigger not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get trigger")
		return
	}

	var req updateTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Update fields if provided
	if req.Class != "" {
		trigger.Class = req.Class
	}
	if req.PluginName != "" {
		trigger.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		trigger.ActionName = req.ActionName
	}
	if req.Config != nil {
		trigger.Config = req.Config
	}
	if req.Enabled != nil {
		trigger.Enabled = *req.Enabled
	}

	if err := h.store.Triggers().Update(trigger); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update trigger")
		return
	}

	writeJSON(w, http.StatusOK, toTriggerResponse(trigger))
}

// delete handles DELETE /api/triggers/{id}.
func (h *TriggersHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Triggers().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Trigger not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete trigger")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
