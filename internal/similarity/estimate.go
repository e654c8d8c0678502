package similarity

import (
	"math"

	"facealign/pkg/geometry"
)

// Estimate returns the similarity transform mapping src onto dst.
// With reflective set, transforms containing a mirror flip are also
// considered.
func Estimate(src, dst []geometry.Point2D, reflective bool) (Pair, error) {
	if reflective {
		return FindReflective(Observed(src), DesignBasis(dst))
	}
	return FindNonReflective(Observed(src), DesignBasis(dst))
}

// EstimateAffine is Estimate followed by conversion of the forward
// transform to its 2x3 column-vector form.
func EstimateAffine(src, dst []geometry.Point2D, reflective bool) (geometry.AffineTransform, error) {
	pair, err := Estimate(src, dst, reflective)
	if err != nil {
		return geometry.AffineTransform{}, err
	}
	return pair.Forward.Affine(), nil
}

// Params describes a similarity transform by its components.
type Params struct {
	Scale     float64 `json:"scale"`
	Rotation  float64 `json:"rotation"` // radians, counter-clockwise
	Reflected bool    `json:"reflected"`
	TX        float64 `json:"tx"`
	TY        float64 `json:"ty"`
}

// RotationDegrees returns the rotation in degrees.
func (p Params) RotationDegrees() float64 {
	return p.Rotation * 180 / math.Pi
}

// Decompose splits t into scale, rotation, reflection and translation.
// A reflected transform is treated as a rotation followed by a mirror
// across the Y axis, and Rotation reports the rotation part.
func Decompose(t geometry.Homogeneous) Params {
	a := t.Affine()
	det := a.A*a.D - a.B*a.C
	p := Params{
		Scale:     math.Sqrt(math.Abs(det)),
		Reflected: det < 0,
		TX:        a.TX,
		TY:        a.TY,
	}
	if p.Reflected {
		p.Rotation = math.Atan2(a.C, -a.A)
	} else {
		p.Rotation = math.Atan2(a.C, a.A)
	}
	return p
}
