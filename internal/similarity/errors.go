package similarity

import "errors"

var (
	// ErrDegenerateConfiguration is returned when the correspondences do
	// not determine the four similarity parameters: fewer than two
	// distinct points, or a numerically rank-deficient design matrix.
	ErrDegenerateConfiguration = errors.New("similarity: at least two unique points are required")

	// ErrSingularMatrix is returned when a transform cannot be inverted.
	ErrSingularMatrix = errors.New("similarity: matrix is singular")

	// ErrPointCountMismatch is returned when the two point sets differ in length.
	ErrPointCountMismatch = errors.New("similarity: point count mismatch")
)
