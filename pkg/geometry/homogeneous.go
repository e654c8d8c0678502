package geometry

// Homogeneous is a 3x3 transform acting on row vectors: a point (x, y)
// maps to the first two components of [x y 1]·H.
//
// For the similarity and affine transforms used here the third column is
// always [0 0 1]ᵗ, so H[2] holds the translation.
type Homogeneous [3][3]float64

// IdentityHomogeneous returns the 3x3 identity.
func IdentityHomogeneous() Homogeneous {
	return Homogeneous{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// ReflectY returns diag(-1, 1, 1), the reflection across the Y axis.
func ReflectY() Homogeneous {
	return Homogeneous{
		{-1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Apply maps a point through the transform.
func (h Homogeneous) Apply(p Point2D) Point2D {
	return Point2D{
		X: p.X*h[0][0] + p.Y*h[1][0] + h[2][0],
		Y: p.X*h[0][1] + p.Y*h[1][1] + h[2][1],
	}
}

// Mul returns the matrix product h·other. In the row-vector convention the
// result applies h first, then other.
func (h Homogeneous) Mul(other Homogeneous) Homogeneous {
	var out Homogeneous
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += h[i][k] * other[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Affine returns transpose(H[:, 0:2]), the 2x3 column-vector form of the
// transform. This is the single seam between the row-vector convention
// used by the estimator and the column-vector convention of warp APIs.
func (h Homogeneous) Affine() AffineTransform {
	return AffineTransform{
		A: h[0][0], B: h[1][0], TX: h[2][0],
		C: h[0][1], D: h[1][1], TY: h[2][1],
	}
}

// Column returns column j of the matrix.
func (h Homogeneous) Column(j int) [3]float64 {
	return [3]float64{h[0][j], h[1][j], h[2][j]}
}
