package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomogeneousAffineIsTransposeOfFirstTwoColumns(t *testing.T) {
	h := Homogeneous{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}

	a := h.Affine()
	assert.Equal(t, [2][3]float64{
		{1, 4, 7},
		{2, 5, 8},
	}, a.ToMatrix())
}

func TestHomogeneousApplyMatchesAffineApply(t *testing.T) {
	h := Homogeneous{
		{0.8, 0.6, 0},
		{-0.6, 0.8, 0},
		{10, -4, 1},
	}
	pts := []Point2D{{0, 0}, {1, 0}, {0, 1}, {-3.5, 7.25}}

	for _, p := range pts {
		want := h.Apply(p)
		got := h.Affine().Apply(p)
		assert.InDelta(t, want.X, got.X, 1e-12)
		assert.InDelta(t, want.Y, got.Y, 1e-12)
	}
}

func TestHomogeneousMulAppliesLeftFirst(t *testing.T) {
	shift := Homogeneous{{1, 0, 0}, {0, 1, 0}, {5, 0, 1}}
	combined := shift.Mul(ReflectY())

	// shift then mirror: (1, 2) -> (6, 2) -> (-6, 2)
	got := combined.Apply(Point2D{X: 1, Y: 2})
	assert.Equal(t, Point2D{X: -6, Y: 2}, got)
	assert.Equal(t, [3]float64{0, 0, 1}, combined.Column(2))
}

func TestIdentityHomogeneous(t *testing.T) {
	h := Homogeneous{{2, 1, 0}, {-1, 2, 0}, {3, 4, 1}}
	assert.Equal(t, h, h.Mul(IdentityHomogeneous()))
	assert.Equal(t, h, IdentityHomogeneous().Mul(h))
}

func TestAffineTransformInverse(t *testing.T) {
	tr := AffineTransform{A: 2, B: -1, TX: 3, C: 1, D: 2, TY: -4}
	inv, ok := tr.Inverse()
	require.True(t, ok)

	p := Point2D{X: 1.5, Y: -2}
	back := inv.Apply(tr.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-12)
	assert.InDelta(t, p.Y, back.Y, 1e-12)

	_, ok = AffineTransform{A: 1, B: 2, C: 2, D: 4}.Inverse()
	assert.False(t, ok)
}

func TestAffineTranslation(t *testing.T) {
	tr := Translation(1, 2)
	assert.Equal(t, Point2D{X: 1, Y: 2}, tr.Apply(Point2D{}))
	assert.Equal(t, [2][3]float64{{1, 0, 1}, {0, 1, 2}}, tr.ToMatrix())
	assert.Equal(t, Point2D{X: 3, Y: -4}, Identity().Apply(Point2D{X: 3, Y: -4}))
}

func TestPointHelpers(t *testing.T) {
	p := Point2D{X: 3, Y: 4}
	assert.Equal(t, 5.0, p.Distance(Point2D{}))
	assert.Equal(t, Point2D{X: -3, Y: 4}, p.MirrorX())
	assert.Equal(t, Point2D{X: 2, Y: 3}, p.Sub(Point2D{X: 1, Y: 1}))
}

func TestCentroidAndBoundingBox(t *testing.T) {
	pts := []Point2D{{0, 0}, {4, 0}, {4, 2}, {0, 2}}
	assert.Equal(t, Point2D{X: 2, Y: 1}, Centroid(pts))

	box := BoundingBox(pts)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 4, Height: 2}, box)
	assert.True(t, box.Contains(Point2D{X: 1, Y: 1}))
	assert.False(t, box.Contains(Point2D{X: 5, Y: 1}))

	assert.Equal(t, Point2D{}, Centroid(nil))
	assert.Equal(t, Rect{}, BoundingBox(nil))
	assert.False(t, math.IsNaN(Centroid(pts[:1]).X))
}
