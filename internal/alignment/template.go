// Package alignment warps face images onto a canonical landmark template
// using a similarity transform fitted to detected facial landmarks.
package alignment

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"facealign/pkg/geometry"
)

// ErrUnknownTemplate is returned by LookupTemplate for names that are not registered.
var ErrUnknownTemplate = errors.New("alignment: unknown template")

// Template is a set of reference landmark positions inside a crop of the
// given size. Points are ordered left eye, right eye, nose tip, left mouth
// corner, right mouth corner.
type Template struct {
	Name   string
	Width  int
	Height int
	Points []geometry.Point2D
}

// Built-in five-point templates.
var (
	// DefaultTemplate is the 96x112 crop used by SphereFace/CosFace style models.
	DefaultTemplate = Template{
		Name:   "default",
		Width:  96,
		Height: 112,
		Points: []geometry.Point2D{
			{X: 30.29459953, Y: 51.69630051},
			{X: 65.53179932, Y: 51.50139999},
			{X: 48.02519989, Y: 71.73660278},
			{X: 33.54930115, Y: 92.36550140},
			{X: 62.72990036, Y: 92.20410156},
		},
	}

	// ArcFaceTemplate is the 112x112 crop used by ArcFace style models.
	ArcFaceTemplate = Template{
		Name:   "arcface",
		Width:  112,
		Height: 112,
		Points: []geometry.Point2D{
			{X: 38.2946, Y: 51.6963},
			{X: 73.5318, Y: 51.5014},
			{X: 56.0252, Y: 71.7366},
			{X: 41.5493, Y: 92.3655},
			{X: 70.7299, Y: 92.2041},
		},
	}
)

var templates = map[string]Template{
	DefaultTemplate.Name: DefaultTemplate,
	ArcFaceTemplate.Name: ArcFaceTemplate,
}

// LookupTemplate returns the built-in template with the given name.
func LookupTemplate(name string) (Template, error) {
	t, ok := templates[strings.ToLower(name)]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownTemplate, name, strings.Join(TemplateNames(), ", "))
	}
	return t, nil
}

// TemplateNames lists the built-in template names in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scaled returns the template resized to a width x height crop. Each axis
// is scaled independently, so a non-proportional size distorts the layout.
func (t Template) Scaled(width, height int) Template {
	if width == t.Width && height == t.Height {
		return t
	}
	sx := float64(width) / float64(t.Width)
	sy := float64(height) / float64(t.Height)

	points := make([]geometry.Point2D, len(t.Points))
	for i, p := range t.Points {
		points[i] = geometry.Point2D{X: p.X * sx, Y: p.Y * sy}
	}
	return Template{Name: t.Name, Width: width, Height: height, Points: points}
}
