package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/thinh1311ss/IE105/internal/config"
	"github.com/thinh1311ss/IE105/internal/logger"
)

// UploadStore keeps timestamped debug copies of every accepted upload and
// trims the oldest ones when the folder outgrows its size cap.
type UploadStore struct {
	dir      string
	maxBytes int64
	logger   *logger.Logger
	mu       sync.Mutex
}

func NewUploadStore(cfg *config.Config, logger *logger.Logger) (*UploadStore, error) {
	if err := os.MkdirAll(cfg.UploadFolder, 0755); err != nil {
		return nil, fmt.Errorf("could not create upload folder %s: %v", cfg.UploadFolder, err)
	}

	return &UploadStore{
		dir:      cfg.UploadFolder,
		maxBytes: cfg.MaxUploadSize * (1 << 30),
		logger:   logger,
	}, nil
}

// Save writes a debug copy of the decoded image and returns its path.
func (s *UploadStore) Save(img gocv.Mat, ext string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("fire_check_%s%s", timestamp, strings.ToLower(ext))
	fullpath := filepath.Join(s.dir, filename)

	if ok := gocv.IMWrite(fullpath, img); !ok {
		return "", fmt.Errorf("could not write image to %s", fullpath)
	}

	return fullpath, nil
}

// List returns the stored debug copies and their combined size in bytes.
func (s *UploadStore) List() ([]string, int64, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, 0, fmt.Errorf("could not read upload folder: %v", err)
	}

	var totalSize int64
	names := make([]string, 0, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		names = append(names, file.Name())
		totalSize += info.Size()
	}

	return names, totalSize, nil
}

// MaxBytes returns the configured size cap of the upload folder.
func (s *UploadStore) MaxBytes() int64 {
	return s.maxBytes
}

// Run periodically enforces the size cap on the upload folder.
func (s *UploadStore) Run(interval int) {
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		<-ticker.C
		s.enforceLimit()
	}
}

type storedFile struct {
	path    string
	size    int64
	modTime time.Time
}

// enforceLimit deletes the oldest debug copies until the folder fits the cap.
func (s *UploadStore) enforceLimit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("Could not read upload folder: %v", err)
		return
	}

	var files []storedFile
	var totalSize int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, storedFile{
			path:    filepath.Join(s.dir, entry.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		totalSize += info.Size()
	}

	if totalSize <= s.maxBytes {
		return
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	removed := 0
	for _, file := range files {
		if totalSize <= s.maxBytes {
			break
		}
		if err := os.Remove(file.path); err != nil {
			s.logger.Error("Could not remove %s: %v", file.path, err)
			continue
		}
		totalSize -= file.size
		removed++
	}

	if removed > 0 {
		s.logger.Info("Upload folder over size cap, removed %d oldest file(s)", removed)
	}
}
