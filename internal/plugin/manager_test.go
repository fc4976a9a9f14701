package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name string) {
	t.Helper()

	pluginDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatal(err)
	}

	manifest := `{"name": "` + name + `", "version": "1.0.0", "executable": "run.sh", "actions": ["log"]}`
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "notify")
	writeManifest(t, dir, "webhook")

	// A directory without a manifest is not a plugin.
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if got := len(m.List()); got != 2 {
		t.Errorf("List() = %d plugins, want 2", got)
	}

	p, err := m.Get("notify")
	if err != nil {
		t.Fatalf("Get(notify) error = %v", err)
	}
	if p.Executable != filepath.Join(dir, "notify", "run.sh") {
		t.Errorf("Executable = %s, want plugin-relative run.sh", p.Executable)
	}
}

func TestManager_DiscoverMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent"))
	if err := m.Discover(); err != nil {
		t.Errorf("Discover() on a missing dir error = %v, want nil", err)
	}
	if got := len(m.List()); got != 0 {
		t.Errorf("List() = %d plugins, want 0", got)
	}
}

func TestManager_InvalidManifestSkipped(t *testing.T) {
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "broken")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if got := len(m.List()); got != 0 {
		t.Errorf("List() = %d plugins, want 0", got)
	}
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Get("nope"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() error = %v, want ErrPluginNotFound", err)
	}
}
