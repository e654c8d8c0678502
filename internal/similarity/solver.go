package similarity

import (
	"fmt"
	"math"

	"facealign/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// minUniquePoints is the number of distinct correspondences needed to fix
// the four similarity parameters.
const minUniquePoints = 2

// Observed holds the points that form the observation vector of the
// least-squares system ("uv"). The solved transform maps these points
// onto the DesignBasis.
type Observed []geometry.Point2D

// DesignBasis holds the points whose coordinates fill the design matrix
// ("xy").
type DesignBasis []geometry.Point2D

// Pair is an estimated transform together with its inverse.
type Pair struct {
	Forward geometry.Homogeneous
	Inverse geometry.Homogeneous
}

// FindNonReflective fits the similarity without reflection that maps uv
// onto xy in the least-squares sense.
//
// The system solved is
//
//	[ x  y  1  0 ] [sc]   [u]
//	[ y -x  0  1 ] [ss] = [v]
//	               [tx]
//	               [ty]
//
// whose solution is the inverse transform (xy -> uv); the forward
// transform is its matrix inverse.
func FindNonReflective(uv Observed, xy DesignBasis) (Pair, error) {
	if len(uv) != len(xy) {
		return Pair{}, fmt.Errorf("%w: %d vs %d", ErrPointCountMismatch, len(uv), len(xy))
	}
	if len(xy) < minUniquePoints {
		return Pair{}, fmt.Errorf("%w: got %d points", ErrDegenerateConfiguration, len(xy))
	}

	m := len(xy)
	design := mat.NewDense(2*m, 4, nil)
	obs := mat.NewVecDense(2*m, nil)
	for i, p := range xy {
		design.SetRow(i, []float64{p.X, p.Y, 1, 0})
		design.SetRow(m+i, []float64{p.Y, -p.X, 0, 1})
		obs.SetVec(i, uv[i].X)
		obs.SetVec(m+i, uv[i].Y)
	}

	if r := rank(design); r < 2*minUniquePoints {
		return Pair{}, fmt.Errorf("%w: design matrix rank %d", ErrDegenerateConfiguration, r)
	}

	// Full column rank, so the QR least-squares solution is unique.
	var qr mat.QR
	qr.Factorize(design)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, obs); err != nil {
		return Pair{}, fmt.Errorf("%w: %v", ErrDegenerateConfiguration, err)
	}

	sc := params.AtVec(0)
	ss := params.AtVec(1)
	tx := params.AtVec(2)
	ty := params.AtVec(3)

	tinv := geometry.Homogeneous{
		{sc, -ss, 0},
		{ss, sc, 0},
		{tx, ty, 1},
	}

	t, err := Invert(tinv)
	if err != nil {
		return Pair{}, err
	}
	t[0][2], t[1][2], t[2][2] = 0, 0, 1

	return Pair{Forward: t, Inverse: tinv}, nil
}

// FindReflective fits both the plain similarity and the similarity composed
// with a reflection across the Y axis, and returns whichever leaves the
// smaller residual. Exact ties keep the non-reflective fit.
func FindReflective(uv Observed, xy DesignBasis) (Pair, error) {
	direct, err := FindNonReflective(uv, xy)
	if err != nil {
		return Pair{}, err
	}

	mirrored := make(DesignBasis, len(xy))
	for i, p := range xy {
		mirrored[i] = p.MirrorX()
	}

	flipped, err := FindNonReflective(uv, mirrored)
	if err != nil {
		return Pair{}, err
	}
	reflected := flipped.Forward.Mul(geometry.ReflectY())

	directNorm := ResidualNorm(direct.Forward, uv, xy)
	reflectedNorm := ResidualNorm(reflected, uv, xy)
	if directNorm <= reflectedNorm {
		return direct, nil
	}

	inv, err := Invert(reflected)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Forward: reflected, Inverse: inv}, nil
}

// Invert returns the matrix inverse of t.
func Invert(t geometry.Homogeneous) (geometry.Homogeneous, error) {
	var inv mat.Dense
	if err := inv.Inverse(toDense(t)); err != nil {
		return geometry.Homogeneous{}, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}
	return fromDense(&inv), nil
}

// rank counts singular values above max(r, c)·σmax·ε, the same cutoff
// LAPACK-based rank estimates use.
func rank(a mat.Matrix) int {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0
	}

	r, c := a.Dims()
	eps := math.Nextafter(1, 2) - 1
	tol := values[0] * float64(max(r, c)) * eps

	n := 0
	for _, v := range values {
		if v > tol {
			n++
		}
	}
	return n
}

func toDense(t geometry.Homogeneous) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		d.SetRow(i, t[i][:])
	}
	return d
}

func fromDense(d mat.Matrix) geometry.Homogeneous {
	var t geometry.Homogeneous
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = d.At(i, j)
		}
	}
	return t
}
