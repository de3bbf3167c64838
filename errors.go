package irlib

import "errors"

// Error kinds surfaced by the public API. Call sites wrap these with context
// via fmt.Errorf("...: %w", ...); callers match with errors.Is.
var (
	// ErrRange reports a basis index outside [0, dim).
	ErrRange = errors.New("irlib: basis index out of range")

	// ErrDomain reports an evaluation argument outside [-1, 1].
	ErrDomain = errors.New("irlib: argument outside [-1,1]")

	// ErrNumericalInstability reports a merged singular-value sequence that
	// is not non-increasing. The construction attempt must be abandoned;
	// retry with a higher working precision or a smaller basis dimension.
	ErrNumericalInstability = errors.New("irlib: numerical instability")

	// ErrConfiguration reports invalid construction parameters.
	ErrConfiguration = errors.New("irlib: invalid configuration")
)
