package cache

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"mapview/internal/debug"
	"mapview/internal/geo"
)

// Manager handles the cache directory: downloaded Natural Earth data and
// fetched map images
type Manager struct {
	cacheDir  string
	userAgent string
	client    *http.Client
}

// DataFile represents a Natural Earth dataset to download
type DataFile struct {
	Name string // Friendly name
	URL  string // Download URL
	Base string // Base filename (without extension)
}

// PopulatedPlaces is the gazetteer source
var PopulatedPlaces = DataFile{
	Name: "Populated Places",
	URL:  "https://naciscdn.org/naturalearth/50m/cultural/ne_50m_populated_places.zip",
	Base: geo.PopulatedPlacesBase,
}

// NewManager creates a new cache manager
// If cacheDir is empty, uses ~/.mapview/data
func NewManager(cacheDir, userAgent string) (*Manager, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".mapview", "data")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	m := &Manager{
		cacheDir:  cacheDir,
		userAgent: userAgent,
		client:    &http.Client{},
	}

	// images left behind by a run that exited before purging
	if err := m.Images().Purge(); err != nil {
		return nil, err
	}

	return m, nil
}

// EnsurePlaces makes sure the populated places shapefile is available,
// downloading it when missing
func (m *Manager) EnsurePlaces() error {
	if err := m.ensureFile(PopulatedPlaces); err != nil {
		return fmt.Errorf("failed to ensure %s: %w", PopulatedPlaces.Name, err)
	}
	return nil
}

// ensureFile checks if a data file exists, downloads if needed
func (m *Manager) ensureFile(file DataFile) error {
	shpPath := filepath.Join(m.cacheDir, file.Base+".shp")
	if _, err := os.Stat(shpPath); err == nil {
		return nil
	}

	fmt.Printf("Downloading %s...\n", file.Name)

	req, err := http.NewRequest(http.MethodGet, file.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s (URL: %s)", resp.Status, file.URL)
	}

	tmpFile, err := os.CreateTemp("", "ne_*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}

	tmpFile.Close()

	if err := m.extractZip(tmpFile.Name(), m.cacheDir); err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}

	debug.Info("downloaded dataset", "name", file.Name, "dir", m.cacheDir)
	fmt.Printf("Downloaded and extracted %s\n", file.Name)
	return nil
}

// extractZip flattens the archive into destDir, skipping directories and dotfiles
func (m *Manager) extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(filepath.Base(f.Name), ".") {
			continue
		}

		destPath := filepath.Join(destDir, filepath.Base(f.Name))
		rc, err := f.Open()
		if err != nil {
			return err
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			rc.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)
		outFile.Close()
		rc.Close()

		if err != nil {
			return err
		}
	}

	return nil
}

// GetCacheDir returns the cache directory
func (m *Manager) GetCacheDir() string {
	return m.cacheDir
}

// Images returns the on-disk store for fetched map images
func (m *Manager) Images() *ImageStore {
	return &ImageStore{dir: filepath.Join(m.cacheDir, "images")}
}
