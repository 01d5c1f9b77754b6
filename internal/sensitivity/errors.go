package sensitivity

import "errors"

// Precondition failures. All are detected before any element is
// written, so a non-nil error means the output slice is untouched.
var (
	// ErrGridSize indicates non-positive mesh dimensions.
	ErrGridSize = errors.New("sensitivity: grid dimensions must be positive")

	// ErrFieldLength indicates a density or output slice whose length
	// does not match the element count.
	ErrFieldLength = errors.New("sensitivity: field length does not match element count")

	// ErrMatrixShape indicates a base stiffness matrix that is not 8x8.
	ErrMatrixShape = errors.New("sensitivity: stiffness derivative matrix must be 8x8")

	// ErrDOFRange indicates a displacement vector too short to cover
	// every DOF index the mesh topology produces.
	ErrDOFRange = errors.New("sensitivity: displacement vector does not cover mesh DOFs")
)
