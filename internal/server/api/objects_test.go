package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeCounters is a CounterSource stub for handler tests.
type fakeCounters struct {
	classes  map[string]int
	frames   int
	ordering []string
}

func (f *fakeCounters) Classes() []string {
	return f.ordering
}

func (f *fakeCounters) Counters() map[string]int {
	return f.classes
}

func (f *fakeCounters) FrameCount() int {
	return f.frames
}

func TestObjectsHandler_Get(t *testing.T) {
	handler := NewObjectsHandler(&fakeCounters{
		classes:  map[string]int{"bottle": 0, "mug": 3},
		frames:   42,
		ordering: []string{"bottle", "mug"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/objects", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listObjectsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Frames != 42 {
		t.Errorf("expected 42 frames, got %d", response.Frames)
	}
	if len(response.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(response.Objects))
	}

	// Classes come back in the detector's sorted order
	if response.Objects[0].Class != "bottle" || response.Objects[0].Count != 0 {
		t.Errorf("unexpected first object: %+v", response.Objects[0])
	}
	if response.Objects[1].Class != "mug" || response.Objects[1].Count != 3 {
		t.Errorf("unexpected second object: %+v", response.Objects[1])
	}
}

func TestObjectsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewObjectsHandler(&fakeCounters{})

	req := httptest.NewRequest(http.MethodPost, "/api/objects", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
