// Package api provides HTTP API handlers for the Argus object recognition system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/argus/internal/store"
)

// DetectionsHandler handles HTTP requests for the detection event log.
type DetectionsHandler struct {
	store *store.Store
}

// NewDetectionsHandler creates a new DetectionsHandler with the given store.
func NewDetectionsHandler(s *store.Store) *DetectionsHandler {
	return &DetectionsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *DetectionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/detections or /api/detections/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/detections")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if path == "counts" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.counts(w, r)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type detectionResponse struct {
	ID        string `json:"id"`
	Class     string `json:"class"`
	Frame     int    `json:"frame"`
	XMin      int    `json:"xmin"`
	YMin      int    `json:"ymin"`
	XMax      int    `json:"xmax"`
	YMax      int    `json:"ymax"`
	CreatedAt string `json:"created_at"`
}

type listDetectionsResponse struct {
	Detections []detectionResponse `json:"detections"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toDetectionResponse converts a store.Detection to a detectionResponse.
func toDetectionResponse(d *store.Detection) detectionResponse {
	return detectionResponse{
		ID:        d.ID,
		Class:     d.Class,
		Frame:     d.Frame,
		XMin:      d.XMin,
		YMin:      d.YMin,
		XMax:      d.XMax,
		YMax:      d.YMax,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/detections. Supports ?class= and ?limit= filters.
func (h *DetectionsHandler) list(w http.ResponseWriter, r *http.Request) {
	var (
		detections []*store.Detection
		err        error
	)

	if class := r.URL.Query().Get("class"); class != "" {
		detections, err = h.store.Detections().ListByClass(class)
	} else {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
		}
		detections, err = h.store.Detections().List(limit)
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list detections")
		return
	}

	response := listDetectionsResponse{
		Detections: make([]detectionResponse, 0, len(detections)),
	}
	for _, d := range detections {
		response.Detections = append(response.Detections, toDetectionResponse(d))
	}

	writeJSON(w, http.StatusOK, response)
}

// counts handles GET /api/detections/counts and returns per-class event totals.
func (h *DetectionsHandler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Detections().CountByClass()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count detections")
		return
	}

	writeJSON(w, http.StatusOK, map[string]map[string]int{"counts": counts})
}

// get handles GET /api/detections/{id} and returns a single detection event.
func (h *DetectionsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	detection, err := h.store.Detections().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Detection not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get detection")
		return
	}

	writeJSON(w, http.StatusOK, toDetectionResponse(detection))
}

// delete handles DELETE /api/detections/{id}.
func (h *DetectionsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Detections().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Detection not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete detection")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clear handles DELETE /api/detections and removes all detection events.
func (h *DetectionsHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Detections().Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear detections")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
