package alignment

import (
	"fmt"
	"image"
	"math"
	"strings"

	"facealign/pkg/geometry"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Interpolation selects the resampling kernel used when warping.
type Interpolation string

const (
	InterpNearest        Interpolation = "nearest"
	InterpBilinear       Interpolation = "bilinear"
	InterpApproxBilinear Interpolation = "approxbilinear"
	InterpCatmullRom     Interpolation = "catmullrom"
)

// Backend selects the warp implementation.
type Backend string

const (
	BackendGo     Backend = "go"     // golang.org/x/image/draw
	BackendOpenCV Backend = "opencv" // gocv
)

// ParseInterpolation validates an interpolation name.
func ParseInterpolation(s string) (Interpolation, error) {
	switch i := Interpolation(strings.ToLower(s)); i {
	case InterpNearest, InterpBilinear, InterpApproxBilinear, InterpCatmullRom:
		return i, nil
	}
	return "", fmt.Errorf("unknown interpolation %q", s)
}

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(s)); b {
	case BackendGo, BackendOpenCV:
		return b, nil
	}
	return "", fmt.Errorf("unknown warp backend %q", s)
}

func (i Interpolation) transformer() draw.Transformer {
	switch i {
	case InterpNearest:
		return draw.NearestNeighbor
	case InterpApproxBilinear:
		return draw.ApproxBiLinear
	case InterpCatmullRom:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

func (i Interpolation) gocvFlags() gocv.InterpolationFlags {
	switch i {
	case InterpNearest:
		return gocv.InterpolationNearestNeighbor
	case InterpCatmullRom:
		return gocv.InterpolationCubic
	default:
		return gocv.InterpolationLinear
	}
}

// WarpAffineGoImage warps img into a width x height RGBA image. transform
// maps source pixel coordinates to destination pixel coordinates; pixels
// with no source coverage are left transparent black.
func WarpAffineGoImage(img image.Image, transform geometry.AffineTransform, width, height int, interp Interpolation) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid output size %dx%d", width, height)
	}
	if _, ok := transform.Inverse(); !ok {
		return nil, fmt.Errorf("transform is not invertible")
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	interp.transformer().Transform(dst, toAff3(transform), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

func toAff3(t geometry.AffineTransform) f64.Aff3 {
	return f64.Aff3{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
	}
}

// CalculateAlignmentError returns the mean distance between transformed
// source points and their destinations.
func CalculateAlignmentError(srcPoints, dstPoints []geometry.Point2D, transform geometry.AffineTransform) float64 {
	if len(srcPoints) != len(dstPoints) || len(srcPoints) == 0 {
		return math.Inf(1)
	}

	var totalError float64
	for i := range srcPoints {
		transformed := transform.Apply(srcPoints[i])
		totalError += transformed.Distance(dstPoints[i])
	}

	return totalError / float64(len(srcPoints))
}
