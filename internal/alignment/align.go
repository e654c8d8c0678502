package alignment

import (
	"errors"
	"fmt"
	"image"

	"facealign/internal/similarity"
	"facealign/pkg/geometry"

	"github.com/rs/zerolog/log"
)

// ErrLandmarkCount is returned when the landmarks do not pair up with the
// template points.
var ErrLandmarkCount = errors.New("alignment: landmark count does not match template")

// Options configures the alignment process.
type Options struct {
	Template      Template      // Reference landmarks, scaled to Width x Height
	Width         int           // Output crop width (0 = template width)
	Height        int           // Output crop height (0 = template height)
	Reflective    bool          // Allow mirrored fits
	Interpolation Interpolation // Resampling kernel
	Backend       Backend       // Warp implementation
}

// DefaultOptions returns default alignment options.
func DefaultOptions() Options {
	return Options{
		Template:      DefaultTemplate,
		Width:         DefaultTemplate.Width,
		Height:        DefaultTemplate.Height,
		Reflective:    true,
		Interpolation: InterpBilinear,
		Backend:       BackendGo,
	}
}

// reference returns the template points scaled to the output size.
func (o Options) reference() Template {
	w, h := o.Width, o.Height
	if w == 0 {
		w = o.Template.Width
	}
	if h == 0 {
		h = o.Template.Height
	}
	return o.Template.Scaled(w, h)
}

// Result holds the outcome of aligning one face.
type Result struct {
	Image     image.Image              // Aligned crop
	Transform similarity.Pair          // Input image -> crop, and back
	Affine    geometry.AffineTransform // 2x3 form of Transform.Forward
	Params    similarity.Params
	Reference []geometry.Point2D // Template points in crop coordinates
	MeanError float64            // Mean landmark distance after mapping, in crop pixels
}

// ToOriginal maps points in crop coordinates back into the input image.
func (r *Result) ToOriginal(pts []geometry.Point2D) []geometry.Point2D {
	return similarity.Apply(r.Transform.Inverse, pts)
}

// Estimate fits the transform taking landmarks onto the scaled template
// without warping any pixels.
func Estimate(landmarks []geometry.Point2D, opts Options) (*Result, error) {
	ref := opts.reference()
	if len(landmarks) != len(ref.Points) {
		return nil, fmt.Errorf("%w: %d landmarks, template %q has %d",
			ErrLandmarkCount, len(landmarks), ref.Name, len(ref.Points))
	}

	pair, err := similarity.Estimate(landmarks, ref.Points, opts.Reflective)
	if err != nil {
		return nil, fmt.Errorf("estimate similarity: %w", err)
	}

	affine := pair.Forward.Affine()
	result := &Result{
		Transform: pair,
		Affine:    affine,
		Params:    similarity.Decompose(pair.Forward),
		Reference: ref.Points,
		MeanError: CalculateAlignmentError(landmarks, ref.Points, affine),
	}

	log.Debug().
		Str("template", ref.Name).
		Int("landmarks", len(landmarks)).
		Float64("scale", result.Params.Scale).
		Float64("rotation_deg", result.Params.RotationDegrees()).
		Bool("reflected", result.Params.Reflected).
		Float64("mean_error", result.MeanError).
		Msg("Estimated similarity")

	return result, nil
}

// landmarksWithin reports whether the bounding box of pts lies inside bounds.
func landmarksWithin(bounds image.Rectangle, pts []geometry.Point2D) (geometry.Rect, bool) {
	box := geometry.BoundingBox(pts)
	frame := geometry.Rect{
		X: float64(bounds.Min.X), Y: float64(bounds.Min.Y),
		Width: float64(bounds.Dx()), Height: float64(bounds.Dy()),
	}
	inside := frame.Contains(geometry.Point2D{X: box.X, Y: box.Y}) &&
		frame.Contains(geometry.Point2D{X: box.X + box.Width, Y: box.Y + box.Height})
	return box, inside
}

// AlignFace estimates the similarity taking landmarks onto the template and
// warps img into the template crop.
func AlignFace(img image.Image, landmarks []geometry.Point2D, opts Options) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("empty input image")
	}

	if box, ok := landmarksWithin(img.Bounds(), landmarks); !ok {
		c := geometry.Centroid(landmarks)
		log.Warn().
			Float64("box_x", box.X).Float64("box_y", box.Y).
			Float64("box_w", box.Width).Float64("box_h", box.Height).
			Float64("centroid_x", c.X).Float64("centroid_y", c.Y).
			Msg("Landmarks extend outside the image")
	}

	result, err := Estimate(landmarks, opts)
	if err != nil {
		return nil, err
	}

	ref := opts.reference()
	var warped image.Image
	switch opts.Backend {
	case BackendOpenCV:
		warped, err = WarpAffineOpenCV(img, result.Affine, ref.Width, ref.Height, opts.Interpolation)
	default:
		warped, err = WarpAffineGoImage(img, result.Affine, ref.Width, ref.Height, opts.Interpolation)
	}
	if err != nil {
		return nil, fmt.Errorf("warp: %w", err)
	}
	result.Image = warped

	log.Info().
		Str("backend", string(opts.Backend)).
		Int("width", ref.Width).
		Int("height", ref.Height).
		Float64("mean_error", result.MeanError).
		Msg("Aligned face")

	return result, nil
}
