package sampler

import "errors"

// Sentinel errors
var (
	// ErrNonFinite means a curve produced no finite point in the viewport.
	ErrNonFinite = errors.New("no finite values in viewport")
)
