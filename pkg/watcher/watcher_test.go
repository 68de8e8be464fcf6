package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func waitForChange(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Changed():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.jsonl")
	writeFile(t, path, "v1\n")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "v2 larger content\n")

	if !waitForChange(t, w, 3*time.Second) {
		t.Fatal("no change notification after file write")
	}
}

func TestWatcherDetectsAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.jsonl")
	writeFile(t, path, "v1\n")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)

	// Snapshot saves write a temp file and rename over the target.
	tmp := filepath.Join(dir, ".bwk-snapshot-test")
	writeFile(t, tmp, "v2 replacement content\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if !waitForChange(t, w, 3*time.Second) {
		t.Fatal("no change notification after atomic replace")
	}
}

func TestWatcherPollingMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.jsonl")
	writeFile(t, path, "v1\n")

	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(30*time.Millisecond),
		WithDebounce(10*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("WithForcePoll(true) should put the watcher in polling mode")
	}

	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "v2 with different size\n")

	if !waitForChange(t, w, 3*time.Second) {
		t.Fatal("no change notification in polling mode")
	}
}

func TestWatcherDoubleStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.jsonl")
	writeFile(t, path, "v1\n")

	w, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestWatcherRemovalReportsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.jsonl")
	writeFile(t, path, "v1\n")

	errCh := make(chan error, 4)
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithOnError(func(e error) {
			select {
			case errCh <- e:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	select {
	case e := <-errCh:
		if !errors.Is(e, ErrFileRemoved) {
			t.Errorf("error = %v, want ErrFileRemoved", e)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no error after the watched file was removed")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.jsonl")
	writeFile(t, path, "v1\n")

	w, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	w.Stop()
	w.Stop() // must not panic
}
