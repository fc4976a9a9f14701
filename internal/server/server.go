// Package server provides the HTTP server for the Argus object
// recognition system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/argus/internal/capture"
	"github.com/ayusman/argus/internal/detector"
	"github.com/ayusman/argus/internal/server/api"
	"github.com/ayusman/argus/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
	Detector  detector.Detector

	// Counters exposes the session counters of the active detector for
	// the objects endpoint. Usually the same value as Detector.
	Counters detector.CounterSource
}

// Server represents the HTTP server for the Argus application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		detectionsHandler := api.NewDetectionsHandler(s.config.Store)
		s.mux.Handle("/api/detections", detectionsHandler)
		s.mux.Handle("/api/detections/", detectionsHandler)

		triggersHandler := api.NewTriggersHandler(s.config.Store)
		s.mux.Handle("/api/triggers", triggersHandler)
		s.mux.Handle("/api/triggers/", triggersHandler)
	}

	if s.config.Counters != nil {
		s.mux.Handle("/api/objects", api.NewObjectsHandler(s.config.Counters))
	}

	// One-shot detection on an uploaded image
	if s.config.Detector != nil {
		s.mux.Handle("/api/detect", NewDetectHandler(s.config.Detector))
	}

	// Annotated MJPEG camera stream
	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera, s.config.Detector))
	}

	// Live detections WebSocket feed
	if s.config.Camera != nil && s.config.Detector != nil {
		s.mux.Handle("/api/feed", NewFeedHandler(s.config.Detector, s.config.Camera))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
