package similarity

import (
	"facealign/pkg/geometry"

	"gonum.org/v1/gonum/floats"
)

// Apply maps every point through t, preserving order.
func Apply(t geometry.Homogeneous, pts []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

// ApplyInverse maps every point through the inverse of t.
func ApplyInverse(t geometry.Homogeneous, pts []geometry.Point2D) ([]geometry.Point2D, error) {
	inv, err := Invert(t)
	if err != nil {
		return nil, err
	}
	return Apply(inv, pts), nil
}

// ResidualNorm returns the L2 norm of Apply(t, src) - dst taken over all
// coordinates. src and dst must have the same length.
func ResidualNorm(t geometry.Homogeneous, src, dst []geometry.Point2D) float64 {
	residual := make([]float64, 0, 2*len(src))
	for i, p := range Apply(t, src) {
		d := p.Sub(dst[i])
		residual = append(residual, d.X, d.Y)
	}
	return floats.Norm(residual, 2)
}
