package api

import (
	"net/http"

	"github.com/ayusman/argus/internal/detector"
)

// ObjectsHandler reports the registered object classes and the session
// counters of the active detector.
type ObjectsHandler struct {
	counters detector.CounterSource
}

// NewObjectsHandler creates a new ObjectsHandler backed by the given counter source.
func NewObjectsHandler(c detector.CounterSource) *ObjectsHandler {
	return &ObjectsHandler{counters: c}
}

type objectResponse struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

type listObjectsResponse struct {
	Objects []objectResponse `json:"objects"`
	Frames  int              `json:"frames"`
}

// ServeHTTP handles GET /api/objects.
func (h *ObjectsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts := h.counters.Counters()

	response := listObjectsResponse{
		Objects: make([]objectResponse, 0, len(counts)),
		Frames:  h.counters.FrameCount(),
	}
	for _, class := range h.counters.Classes() {
		response.Objects = append(response.Objects, objectResponse{
			Class: class,
			Count: counts[class],
		})
	}

	writeJSON(w, http.StatusOK, response)
}
