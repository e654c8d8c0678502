// Package similarity estimates 2-D similarity transforms (uniform scale,
// rotation, optional reflection and translation) from point
// correspondences by linear least squares.
//
// Transforms are 3x3 matrices acting on row vectors, [x y 1]·T (see
// geometry.Homogeneous). Every estimate yields a Pair holding T and its
// exact inverse. Use geometry.Homogeneous.Affine to obtain the 2x3
// column-vector form expected by raster warp routines.
package similarity
