package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFilesAreEmptyMaps(t *testing.T) {
	f := NewFiles(t.TempDir())

	dirs, err := f.TitleDirections()
	require.NoError(t, err)
	assert.Empty(t, dirs)

	mins, err := f.TitleMinimums()
	require.NoError(t, err)
	assert.Empty(t, mins)

	countries, err := f.CountryCurrencies()
	require.NoError(t, err)
	assert.Empty(t, countries)
}

func TestSaveAndReload(t *testing.T) {
	f := NewFiles(filepath.Join(t.TempDir(), "data"))

	want := map[string]string{
		"CPI (YoY)":         "Better Up",
		"Unemployment Rate": "Better Down",
		"Ivey PMI":          "Update Needed",
	}
	require.NoError(t, f.SaveTitleDirections(want))

	got, err := f.TitleDirections()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWritesAreIndented(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir)
	require.NoError(t, f.SaveNewTitles(map[string]string{"GDP": "Update Needed"}))

	data, err := os.ReadFile(filepath.Join(dir, "newTitles.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"GDP\"")
}

func TestCorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "titleMinimums.json"), []byte("{broken"), 0o644))

	_, err := NewFiles(dir).TitleMinimums()
	assert.Error(t, err)
}

func TestTitleMinimumsParse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "titleMinimums.json"),
		[]byte(`{"Manufacturing PMI": 50, "Interest Rate": 0.25}`), 0o644))

	mins, err := NewFiles(dir).TitleMinimums()
	require.NoError(t, err)
	assert.Equal(t, 50.0, mins["Manufacturing PMI"])
	assert.Equal(t, 0.25, mins["Interest Rate"])
}
