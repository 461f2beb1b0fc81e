// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// File represents a PlateScan project file (.platescan).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Data file paths (relative to project file)
	HoleTablePath string `json:"hole_table,omitempty"`
	ArchivePath   string `json:"archive,omitempty"`
	SnapshotDir   string `json:"snapshot_dir,omitempty"`

	// User settings
	Settings Settings `json:"settings,omitempty"`
}

// Settings holds user preferences for the project.
type Settings struct {
	SimIntervalMs  int     `json:"sim_interval_ms,omitempty"`
	SimQualifyProb float64 `json:"sim_qualify_prob,omitempty"`
	PixelsPerUnit  float64 `json:"pixels_per_unit,omitempty"`
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Settings: Settings{
			SimIntervalMs:  20,
			SimQualifyProb: 0.95,
			PixelsPerUnit:  12.0,
		},
	}
}

// Load loads a project from a .platescan file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, err
	}
	return &proj, nil
}

// Save writes the project to a .platescan file, stamping Modified.
func (f *File) Save(path string) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ResolvePath resolves a project-relative data path against the project
// file's directory. Absolute paths pass through unchanged.
func ResolvePath(projectPath, dataPath string) string {
	if dataPath == "" || filepath.IsAbs(dataPath) {
		return dataPath
	}
	return filepath.Join(filepath.Dir(projectPath), dataPath)
}
