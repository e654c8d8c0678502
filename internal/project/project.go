// Package project provides alignment project file handling and persistence.
//
// A project file describes one face: the image, its detected landmarks,
// the reference they should be mapped onto, and the last alignment result.
// Files ending in .json are JSON; anything else is YAML.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"facealign/internal/similarity"
	"facealign/pkg/geometry"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the file format version written by Save.
const CurrentVersion = 1

// ErrNoLandmarks is returned by Validate when the project has no landmarks.
var ErrNoLandmarks = errors.New("project: no landmarks")

// File represents a facealign project file.
type File struct {
	Version     int       `json:"version" yaml:"version"`
	Name        string    `json:"name" yaml:"name"`
	Created     time.Time `json:"created" yaml:"created"`
	Modified    time.Time `json:"modified" yaml:"modified"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`

	// Image path (relative to project file)
	ImagePath string `json:"image,omitempty" yaml:"image,omitempty"`

	// Landmarks detected in the image, in pixel coordinates.
	Landmarks []geometry.Point2D `json:"landmarks" yaml:"landmarks"`

	// Destination overrides the template with explicit reference points.
	Destination []geometry.Point2D `json:"destination,omitempty" yaml:"destination,omitempty"`

	// Per-project overrides of the configuration.
	Template   string `json:"template,omitempty" yaml:"template,omitempty"`
	Reflective *bool  `json:"reflective,omitempty" yaml:"reflective,omitempty"`

	Result *Result `json:"result,omitempty" yaml:"result,omitempty"`
}

// Result records the outcome of the last alignment.
type Result struct {
	Forward    geometry.Homogeneous `json:"forward" yaml:"forward"`
	Inverse    geometry.Homogeneous `json:"inverse" yaml:"inverse"`
	Affine     [2][3]float64        `json:"affine" yaml:"affine"`
	Params     similarity.Params    `json:"params" yaml:"params"`
	MeanError  float64              `json:"mean_error" yaml:"mean_error"`
	OutputPath string               `json:"output,omitempty" yaml:"output,omitempty"`
	AlignedAt  time.Time            `json:"aligned_at" yaml:"aligned_at"`
}

// New creates a new project file.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  CurrentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
	}
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load loads a project from a file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if isJSON(path) {
		err = json.Unmarshal(data, &proj)
	} else {
		err = yaml.Unmarshal(data, &proj)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("project %s has version %d, newest supported is %d", path, proj.Version, CurrentVersion)
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()
	if p.Version == 0 {
		p.Version = CurrentVersion
	}

	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(p, "", "  ")
	} else {
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the project can be aligned.
func (p *File) Validate() error {
	if len(p.Landmarks) == 0 {
		return ErrNoLandmarks
	}
	if len(p.Destination) > 0 && len(p.Destination) != len(p.Landmarks) {
		return fmt.Errorf("%w: %d landmarks, %d destination points",
			similarity.ErrPointCountMismatch, len(p.Landmarks), len(p.Destination))
	}
	return nil
}

// SetImage sets the image path (relative to project).
func (p *File) SetImage(projectPath, imagePath string) {
	p.ImagePath = relativeTo(projectPath, imagePath)
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the image.
func (p *File) GetImagePath(projectPath string) string {
	return resolve(projectPath, p.ImagePath)
}

// DefaultOutputPath returns the image path with suffix and ext appended.
// Callers relocate it when an output directory is configured.
func (p *File) DefaultOutputPath(projectPath, suffix, ext string) string {
	src := p.GetImagePath(projectPath)
	if src == "" {
		src = projectPath
	}
	base := src[:len(src)-len(filepath.Ext(src))]
	return base + suffix + "." + strings.TrimPrefix(ext, ".")
}

// ReflectiveOr returns the project's reflective override, or fallback.
func (p *File) ReflectiveOr(fallback bool) bool {
	if p.Reflective == nil {
		return fallback
	}
	return *p.Reflective
}

// RecordResult stores an estimated transform in the project.
func (p *File) RecordResult(projectPath string, pair similarity.Pair, meanError float64, outputPath string) {
	p.Result = &Result{
		Forward:   pair.Forward,
		Inverse:   pair.Inverse,
		Affine:    pair.Forward.Affine().ToMatrix(),
		Params:    similarity.Decompose(pair.Forward),
		MeanError: meanError,
		AlignedAt: time.Now(),
	}
	if outputPath != "" {
		p.Result.OutputPath = relativeTo(projectPath, outputPath)
	}
	p.Modified = time.Now()
}

func relativeTo(projectPath, path string) string {
	rel, err := filepath.Rel(filepath.Dir(projectPath), path)
	if err != nil {
		return path
	}
	return rel
}

func resolve(projectPath, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(projectPath), path)
}
