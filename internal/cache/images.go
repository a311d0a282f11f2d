package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// ImageStore keeps fetched map images on disk, one file per request URL
type ImageStore struct {
	dir string
}

// Dir returns the directory holding the images
func (s *ImageStore) Dir() string {
	return s.dir
}

func (s *ImageStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".img")
}

// Load returns the cached bytes for key
func (s *ImageStore) Load(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Save writes the bytes for key. The file is renamed into place so readers
// never see a partial image.
func (s *ImageStore) Save(key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "img-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("failed to store image: %w", err)
	}
	return nil
}

// Purge removes every cached image
func (s *ImageStore) Purge() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to purge images: %w", err)
	}
	return nil
}
