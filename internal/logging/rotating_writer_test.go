package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriterBasicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := newRotatingWriter(path, 1024, 3)
	if err != nil {
		t.Fatalf("newRotatingWriter failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	msg := "hello log\n"
	n, err := w.Write([]byte(msg))
	if err != nil || n != len(msg) {
		t.Fatalf("Write = (%d, %v)", n, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != msg {
		t.Errorf("file contents = %q", data)
	}
}

func TestRotatingWriterRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	w, err := newRotatingWriter(path, 50, 2)
	if err != nil {
		t.Fatalf("newRotatingWriter failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	line := strings.Repeat("x", 30) + "\n"
	for i := 0; i < 4; i++ {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	// Rotation on every second write: app.log plus app.1.log present.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("current file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "app.1.log")); err != nil {
		t.Errorf("first backup missing: %v", err)
	}

	info, _ := os.Stat(path)
	if info.Size() > 50 {
		t.Errorf("current file exceeds max size: %d", info.Size())
	}
}

func TestRotatingWriterDropsOldBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	w, err := newRotatingWriter(path, 10, 2)
	if err != nil {
		t.Fatalf("newRotatingWriter failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	for i := 0; i < 6; i++ {
		if _, err := w.Write([]byte("0123456789")); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "app.3.log")); err == nil {
		t.Error("backup beyond the retention count should not exist")
	}
}

func TestRotatingWriterAppendsOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	w, err := newRotatingWriter(path, 1024, 2)
	if err != nil {
		t.Fatalf("newRotatingWriter failed: %v", err)
	}
	_, _ = w.Write([]byte("first\n"))
	_ = w.Close()

	w, err = newRotatingWriter(path, 1024, 2)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	_, _ = w.Write([]byte("second\n"))
	_ = w.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "first\nsecond\n" {
		t.Errorf("expected appended contents, got %q", data)
	}
}
