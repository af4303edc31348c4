package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	other := filepath.Join(dir, "other.yaml")
	writeFile(t, path, "mfact: 0.5\n")

	notified := make(chan string, 8)
	w := NewWatcher([]string{path}, func(reason string) { notified <- reason }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Serve(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, other, "ignored\n")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("mfact: 0.6\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-notified:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected a change notification")
	}

	select {
	case reason := <-notified:
		t.Fatalf("expected writes to be coalesced, got extra notification %q", reason)
	case <-time.After(2 * DebounceWindow):
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("watcher did not stop")
	}
}
