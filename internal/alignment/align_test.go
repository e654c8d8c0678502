package alignment

import (
	"image"
	"image/color"
	"math"
	"testing"

	"facealign/internal/similarity"
	"facealign/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var marker = color.RGBA{R: 255, G: 0, B: 0, A: 255}

func shifted(pts []geometry.Point2D, dx, dy float64) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = geometry.Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// faceImage draws a 5x5 marker centred on each landmark over a grey field.
func faceImage(width, height int, landmarks []geometry.Point2D) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	grey := color.RGBA{R: 64, G: 64, B: 64, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, grey)
		}
	}
	for _, p := range landmarks {
		cx, cy := int(math.Floor(p.X)), int(math.Floor(p.Y))
		for y := cy - 2; y <= cy+2; y++ {
			for x := cx - 2; x <= cx+2; x++ {
				img.Set(x, y, marker)
			}
		}
	}
	return img
}

func TestLookupTemplate(t *testing.T) {
	tmpl, err := LookupTemplate("ArcFace")
	require.NoError(t, err)
	assert.Equal(t, ArcFaceTemplate, tmpl)

	_, err = LookupTemplate("nope")
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	assert.Equal(t, []string{"arcface", "default"}, TemplateNames())
}

func TestTemplateScaled(t *testing.T) {
	assert.Equal(t, DefaultTemplate, DefaultTemplate.Scaled(96, 112))

	big := DefaultTemplate.Scaled(192, 224)
	assert.Equal(t, 192, big.Width)
	assert.Equal(t, 224, big.Height)
	for i, p := range DefaultTemplate.Points {
		assert.InDelta(t, p.X*2, big.Points[i].X, 1e-12)
		assert.InDelta(t, p.Y*2, big.Points[i].Y, 1e-12)
	}
	// The original is left untouched.
	assert.Equal(t, 30.29459953, DefaultTemplate.Points[0].X)
}

func TestEstimateRecoversTemplateMapping(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 192, 224
	ref := opts.reference()

	// Landmarks are the template rotated, scaled and shifted into an image.
	truth := geometry.Homogeneous{
		{0.4 * math.Cos(0.3), 0.4 * math.Sin(0.3), 0},
		{-0.4 * math.Sin(0.3), 0.4 * math.Cos(0.3), 0},
		{120, 80, 1},
	}
	landmarks := similarity.Apply(truth, ref.Points)

	result, err := Estimate(landmarks, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0, result.MeanError, 1e-9)
	assert.InDelta(t, 2.5, result.Params.Scale, 1e-9)
	assert.False(t, result.Params.Reflected)
	assert.Equal(t, ref.Points, result.Reference)

	back := result.ToOriginal(result.Reference)
	for i := range landmarks {
		assert.InDelta(t, landmarks[i].X, back[i].X, 1e-9)
		assert.InDelta(t, landmarks[i].Y, back[i].Y, 1e-9)
	}
}

func TestEstimateLandmarkCountMismatch(t *testing.T) {
	_, err := Estimate(DefaultTemplate.Points[:3], DefaultOptions())
	assert.ErrorIs(t, err, ErrLandmarkCount)
}

func TestEstimateDegenerateLandmarks(t *testing.T) {
	opts := DefaultOptions()
	opts.Template = Template{
		Name: "collapsed", Width: 10, Height: 10,
		Points: []geometry.Point2D{{X: 5, Y: 5}, {X: 5, Y: 5}},
	}
	_, err := Estimate([]geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}}, opts)
	assert.ErrorIs(t, err, similarity.ErrDegenerateConfiguration)
}

func TestAlignFaceTranslatedLandmarks(t *testing.T) {
	opts := DefaultOptions()
	opts.Interpolation = InterpNearest

	// Integer-centred landmarks shifted by a whole number of pixels, so the
	// fitted transform is a pure translation.
	ref := make([]geometry.Point2D, len(DefaultTemplate.Points))
	for i, p := range DefaultTemplate.Points {
		ref[i] = geometry.Point2D{X: math.Floor(p.X) + 0.5, Y: math.Floor(p.Y) + 0.5}
	}
	opts.Template = Template{Name: "grid", Width: 96, Height: 112, Points: ref}
	landmarks := shifted(ref, 40, 25)
	img := faceImage(200, 200, landmarks)

	result, err := AlignFace(img, landmarks, opts)
	require.NoError(t, err)
	require.NotNil(t, result.Image)
	assert.Equal(t, image.Rect(0, 0, 96, 112), result.Image.Bounds())
	assert.InDelta(t, -40, result.Affine.TX, 1e-9)
	assert.InDelta(t, -25, result.Affine.TY, 1e-9)

	for _, p := range ref {
		got := color.RGBAModel.Convert(result.Image.At(int(p.X), int(p.Y)))
		assert.Equal(t, marker, got, "template point %v", p)
	}
	corner := color.RGBAModel.Convert(result.Image.At(0, 0)).(color.RGBA)
	assert.NotEqual(t, marker, corner)
}

func TestAlignFaceRejectsEmptyImage(t *testing.T) {
	_, err := AlignFace(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultTemplate.Points, DefaultOptions())
	assert.Error(t, err)
}

func TestLandmarksWithin(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)
	for _, tc := range []struct {
		name   string
		pts    []geometry.Point2D
		inside bool
	}{
		{"inside", []geometry.Point2D{{X: 10, Y: 10}, {X: 90, Y: 70}}, true},
		{"on the edge", []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 80}}, true},
		{"one point past the right edge", []geometry.Point2D{{X: 10, Y: 10}, {X: 120, Y: 40}}, false},
		// The centroid is inside but the box is not.
		{"straddling the top", []geometry.Point2D{{X: 50, Y: -20}, {X: 50, Y: 60}}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			box, ok := landmarksWithin(bounds, tc.pts)
			assert.Equal(t, tc.inside, ok)
			assert.Equal(t, geometry.BoundingBox(tc.pts), box)
		})
	}
}

func TestWarpAffineGoImageTranslation(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	src.Set(3, 4, marker)

	out, err := WarpAffineGoImage(src, geometry.Translation(5, 6), 20, 20, InterpNearest)
	require.NoError(t, err)

	assert.Equal(t, marker, color.RGBAModel.Convert(out.At(8, 10)))
	assert.Equal(t, color.RGBA{}, color.RGBAModel.Convert(out.At(3, 4)))
}

func TestWarpAffineGoImageErrors(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))

	_, err := WarpAffineGoImage(src, geometry.Identity(), 0, 4, InterpBilinear)
	assert.Error(t, err)

	_, err = WarpAffineGoImage(src, geometry.AffineTransform{}, 4, 4, InterpBilinear)
	assert.Error(t, err)
}

func TestParseOptions(t *testing.T) {
	i, err := ParseInterpolation("CatmullRom")
	require.NoError(t, err)
	assert.Equal(t, InterpCatmullRom, i)
	_, err = ParseInterpolation("cubic-ish")
	assert.Error(t, err)

	b, err := ParseBackend("OpenCV")
	require.NoError(t, err)
	assert.Equal(t, BackendOpenCV, b)
	_, err = ParseBackend("vulkan")
	assert.Error(t, err)
}

func TestCalculateAlignmentError(t *testing.T) {
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}}
	dst := []geometry.Point2D{{X: 3, Y: 4}, {X: 1, Y: 1}}
	assert.InDelta(t, 2.5, CalculateAlignmentError(src, dst, geometry.Identity()), 1e-12)
	assert.True(t, math.IsInf(CalculateAlignmentError(src, dst[:1], geometry.Identity()), 1))
}
