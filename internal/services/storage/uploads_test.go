package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/thinh1311ss/IE105/internal/config"
	"github.com/thinh1311ss/IE105/internal/logger"
)

func newTestStore(t *testing.T) *UploadStore {
	t.Helper()

	cfg := &config.Config{
		UploadFolder:  t.TempDir(),
		LogDirectory:  t.TempDir(),
		MaxUploadSize: 1,
	}
	store, err := NewUploadStore(cfg, logger.NewLogger(cfg))
	if err != nil {
		t.Fatalf("NewUploadStore failed: %v", err)
	}
	return store
}

func TestSave_WritesTimestampedCopy(t *testing.T) {
	store := newTestStore(t)

	mat := gocv.NewMatWithSize(16, 16, gocv.MatTypeCV8UC3)
	defer mat.Close()

	path, err := store.Save(mat, ".JPG")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	name := filepath.Base(path)
	if !strings.HasPrefix(name, "fire_check_") {
		t.Errorf("Expected fire_check_ prefix, got %s", name)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("Expected lowercased .jpg suffix, got %s", name)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Saved file missing on disk: %v", err)
	}
}

func TestList_ReportsFilesAndSize(t *testing.T) {
	store := newTestStore(t)

	data := []byte("jpeg-bytes")
	if err := os.WriteFile(filepath.Join(store.dir, "fire_check_a.jpg"), data, 0644); err != nil {
		t.Fatalf("Could not seed upload folder: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.dir, "fire_check_b.jpg"), data, 0644); err != nil {
		t.Fatalf("Could not seed upload folder: %v", err)
	}

	uploads, size, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(uploads) != 2 {
		t.Errorf("Expected 2 uploads, got %d", len(uploads))
	}
	if size != int64(2*len(data)) {
		t.Errorf("Expected size %d, got %d", 2*len(data), size)
	}
}

func TestEnforceLimit_RemovesOldestFirst(t *testing.T) {
	store := newTestStore(t)
	store.maxBytes = 25 // three 10-byte files exceed this

	now := time.Now()
	names := []string{"fire_check_old.jpg", "fire_check_mid.jpg", "fire_check_new.jpg"}
	for i, name := range names {
		path := filepath.Join(store.dir, name)
		if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
			t.Fatalf("Could not seed upload folder: %v", err)
		}
		age := time.Duration(len(names)-i) * time.Hour
		if err := os.Chtimes(path, now.Add(-age), now.Add(-age)); err != nil {
			t.Fatalf("Could not set file time: %v", err)
		}
	}

	store.enforceLimit()

	if _, err := os.Stat(filepath.Join(store.dir, "fire_check_old.jpg")); !os.IsNotExist(err) {
		t.Error("Oldest file should have been removed")
	}
	if _, err := os.Stat(filepath.Join(store.dir, "fire_check_new.jpg")); err != nil {
		t.Error("Newest file should have been kept")
	}

	_, size, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if size > store.maxBytes {
		t.Errorf("Folder still over cap: %d > %d", size, store.maxBytes)
	}
}

func TestEnforceLimit_NoopUnderCap(t *testing.T) {
	store := newTestStore(t)

	path := filepath.Join(store.dir, "fire_check_a.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0644); err != nil {
		t.Fatalf("Could not seed upload folder: %v", err)
	}

	store.enforceLimit()

	if _, err := os.Stat(path); err != nil {
		t.Error("Files under the cap must not be removed")
	}
}
