package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReportsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idlegear.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	// Other files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-w.Changes():
		if got != w.Path() {
			t.Errorf("change path = %q, want %q", got, w.Path())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case got := <-w.Changes():
		t.Errorf("unexpected second change %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_MissingFile(t *testing.T) {
	if _, err := Watch(filepath.Join(t.TempDir(), "nope.toml"), 0); err == nil {
		t.Error("Watch of missing file succeeded")
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Watch(path, 0)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close() = %v, want ErrWatcherClosed", err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Error("Changes channel still open")
	}
}
