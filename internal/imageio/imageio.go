// Package imageio loads and saves face images.
package imageio

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// SaveOptions controls encoding of saved images.
type SaveOptions struct {
	Quality  int  // JPEG / lossy WebP quality, 1-100
	Lossless bool // WebP only
}

// DefaultSaveOptions returns the default encoder settings.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{Quality: 95}
}

// SupportedFormats returns the list of supported image extensions.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg", ".bmp", ".gif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// Load decodes the image at path, applying EXIF orientation so that pixel
// coordinates match what viewers (and landmark detectors) see.
func Load(path string) (image.Image, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("unsupported image format: %s", filepath.Ext(path))
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if strings.ToLower(filepath.Ext(path)) != ".webp" {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	f, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("failed to open image: %w", ferr)
	}
	defer f.Close()

	img, err = webp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode webp: %w", err)
	}
	return img, nil
}

// Save encodes img to path, choosing the encoder from the file extension.
func Save(path string, img image.Image, opts SaveOptions) error {
	if opts.Quality < 1 || opts.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", opts.Quality)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		encErr := webp.Encode(f, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(opts.Quality)})
		if cerr := f.Close(); encErr == nil {
			encErr = cerr
		}
		if encErr != nil {
			return fmt.Errorf("failed to encode webp: %w", encErr)
		}
		return nil
	case ".jpg", ".jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(opts.Quality))
	default:
		return imaging.Save(img, path)
	}
}
