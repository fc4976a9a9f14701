package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "argus.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew(t *testing.T) {
	s := newTestStore(t)
	if s.DB() == nil {
		t.Fatal("DB() returned nil")
	}
}

func TestDetectionRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Detections()

	d := &Detection{
		ID:    uuid.NewString(),
		Class: "mug",
		Frame: 42,
		XMin:  10, YMin: 20, XMax: 110, YMax: 220,
	}
	if err := repo.Create(d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(d.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Class != "mug" || got.Frame != 42 {
		t.Errorf("GetByID() = %+v, want class mug frame 42", got)
	}
	if got.XMin != 10 || got.YMin != 20 || got.XMax != 110 || got.YMax != 220 {
		t.Errorf("GetByID() box = %+v, want (10,20,110,220)", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestDetectionRepository_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Detections().GetByID("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestDetectionRepository_ListAndCount(t *testing.T) {
	s := newTestStore(t)
	repo := s.Detections()

	for i, class := range []string{"mug", "mug", "bottle"} {
		d := &Detection{ID: uuid.NewString(), Class: class, Frame: i}
		if err := repo.Create(d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List() = %d events, want 3", len(all))
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) = %d events, want 2", len(limited))
	}

	mugs, err := repo.ListByClass("mug")
	if err != nil {
		t.Fatalf("ListByClass() error = %v", err)
	}
	if len(mugs) != 2 {
		t.Errorf("ListByClass(mug) = %d events, want 2", len(mugs))
	}

	counts, err := repo.CountByClass()
	if err != nil {
		t.Fatalf("CountByClass() error = %v", err)
	}
	if counts["mug"] != 2 || counts["bottle"] != 1 {
		t.Errorf("CountByClass() = %v, want mug:2 bottle:1", counts)
	}
}

func TestDetectionRepository_DeleteAndClear(t *testing.T) {
	s := newTestStore(t)
	repo := s.Detections()

	d := &Detection{ID: uuid.NewString(), Class: "mug"}
	if err := repo.Create(d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(d.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	if err := repo.Create(&Detection{ID: uuid.NewString(), Class: "mug"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("List() after Clear() = %d events, want 0", len(all))
	}
}

func TestTriggerRepository_CRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Triggers()

	tr := &Trigger{
		ID:         uuid.NewString(),
		Class:      "mug",
		PluginName: "notify",
		ActionName: "log",
		Enabled:    true,
	}
	if err := repo.Create(tr); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(tr.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PluginName != "notify" || !got.Enabled {
		t.Errorf("GetByID() = %+v, want enabled notify binding", got)
	}
	if string(got.Config) != "{}" {
		t.Errorf("Config = %s, want default {}", got.Config)
	}

	got.Enabled = false
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Disabled triggers are invisible to class lookups.
	bound, err := repo.ListByClass("mug")
	if err != nil {
		t.Fatalf("ListByClass() error = %v", err)
	}
	if len(bound) != 0 {
		t.Errorf("ListByClass() = %d triggers, want 0 after disabling", len(bound))
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() = %d triggers, want 1", len(all))
	}

	if err := repo.Delete(tr.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(tr.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}
