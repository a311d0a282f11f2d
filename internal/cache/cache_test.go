package cache

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestNewManagerCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	m, err := NewManager(dir, "")
	require.NoError(t, err)
	assert.Equal(t, dir, m.GetCacheDir())
	assert.DirExists(t, dir)
}

func TestEnsureFileDownloadsAndExtracts(t *testing.T) {
	archive := zipArchive(t, map[string]string{
		"places/places.shp": "shp",
		"places/places.dbf": "dbf",
		"places/.DS_Store":  "junk",
	})

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "mapview-test", r.UserAgent())
		w.Write(archive)
	}))
	defer srv.Close()

	m, err := NewManager(t.TempDir(), "mapview-test")
	require.NoError(t, err)

	file := DataFile{Name: "Places", URL: srv.URL + "/places.zip", Base: "places"}
	require.NoError(t, m.ensureFile(file))

	data, err := os.ReadFile(filepath.Join(m.GetCacheDir(), "places.shp"))
	require.NoError(t, err)
	assert.Equal(t, "shp", string(data))
	assert.FileExists(t, filepath.Join(m.GetCacheDir(), "places.dbf"))
	assert.NoFileExists(t, filepath.Join(m.GetCacheDir(), ".DS_Store"))

	// Already present: no second download
	require.NoError(t, m.ensureFile(file))
	assert.Equal(t, 1, requests)
}

func TestEnsureFileBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	m, err := NewManager(t.TempDir(), "")
	require.NoError(t, err)

	err = m.ensureFile(DataFile{Name: "Missing", URL: srv.URL, Base: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestImageStore(t *testing.T) {
	m, err := NewManager(t.TempDir(), "")
	require.NoError(t, err)
	store := m.Images()

	key := "http://static-maps.yandex.ru/1.x/?ll=37.618423,55.751244&z=8"
	_, ok := store.Load(key)
	assert.False(t, ok)

	require.NoError(t, store.Save(key, []byte("first")))
	require.NoError(t, store.Save(key, []byte("second")))

	data, ok := store.Load(key)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), data)

	_, ok = store.Load(key + "&l=skl")
	assert.False(t, ok)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	require.NoError(t, store.Purge())
	assert.NoDirExists(t, store.Dir())
	_, ok = store.Load(key)
	assert.False(t, ok)
}

func TestNewManagerPurgesLeftoverImages(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, "")
	require.NoError(t, err)

	key := "http://static-maps.yandex.ru/1.x/?ll=37.618423,55.751244&z=8"
	require.NoError(t, m.Images().Save(key, []byte("<html>glitch</html>")))

	m, err = NewManager(dir, "")
	require.NoError(t, err)

	_, ok := m.Images().Load(key)
	assert.False(t, ok)
}
