// Package store persists the hand-maintained calendar knowledge as JSON
// documents in a data directory: title classifications, per-title minimum
// thresholds, and the country-to-currency mapping. The files are edited by
// hand between runs, so writes keep them indented.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	titleDirectionsFile   = "titleDirections.json"
	titleMinimumsFile     = "titleMinimums.json"
	countryCurrenciesFile = "countryCurrencies.json"
	newTitlesFile         = "newTitles.json"
)

// Files reads and writes the calendar knowledge files under one directory.
type Files struct {
	dir string
}

func NewFiles(dir string) *Files {
	return &Files{dir: dir}
}

// TitleDirections loads the title classification map. A missing file is an
// empty map, not an error; the engine will repopulate it.
func (f *Files) TitleDirections() (map[string]string, error) {
	out := map[string]string{}
	if err := f.read(titleDirectionsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *Files) SaveTitleDirections(d map[string]string) error {
	return f.write(titleDirectionsFile, d)
}

// SaveNewTitles records the titles flagged for manual classification. The
// file is overwritten each cycle; it is a worklist, not a log.
func (f *Files) SaveNewTitles(d map[string]string) error {
	return f.write(newTitlesFile, d)
}

func (f *Files) TitleMinimums() (map[string]float64, error) {
	out := map[string]float64{}
	if err := f.read(titleMinimumsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *Files) CountryCurrencies() (map[string]string, error) {
	out := map[string]string{}
	if err := f.read(countryCurrenciesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *Files) read(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("store: decode %s: %w", name, err)
	}
	return nil
}

func (f *Files) write(name string, v any) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(f.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	return nil
}
