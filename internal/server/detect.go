package server

import (
	"encoding/json"
	"io"
	"net/http"

	"gocv.io/x/gocv"

	"github.com/ayusman/argus/internal/detector"
)

// maxUploadBytes bounds the accepted scene image size (16 MiB).
const maxUploadBytes = 16 << 20

// DetectHandler runs one-shot detection on an uploaded scene image.
//
// POST /api/detect with the raw image bytes as the body returns the
// detections map as JSON. With ?annotated=1 the annotated scene is
// returned as JPEG instead.
type DetectHandler struct {
	detector detector.Detector
}

// NewDetectHandler creates a new DetectHandler with the given detector.
func NewDetectHandler(d detector.Detector) *DetectHandler {
	return &DetectHandler{detector: d}
}

// ServeHTTP implements the http.Handler interface.
func (h *DetectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	frame, err := gocv.IMDecode(body, gocv.IMReadColor)
	if err != nil || frame.Empty() {
		http.Error(w, "Body is not a decodable image", http.StatusBadRequest)
		return
	}
	defer frame.Close()

	detections, err := h.detector.Detect(&frame)
	if err != nil {
		http.Error(w, "Detection failed", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("annotated") == "1" {
		buf, err := gocv.IMEncode(".jpg", frame)
		if err != nil {
			http.Error(w, "Failed to encode annotated image", http.StatusInternalServerError)
			return
		}
		defer buf.Close()

		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(buf.GetBytes())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"detections": detections,
	})
}
