package fraggen

import "github.com/zeebo/errs"

var (
	// ErrInput means the data objects or probes could not be read; fatal.
	ErrInput = errs.Class("invalid input")

	// ErrProbePool means probe checks are on but the pool is unusable; fatal.
	ErrProbePool = errs.Class("probe pool")

	// ErrCodec means the erasure code failed to produce symbols; fatal.
	ErrCodec = errs.Class("codec")

	// ErrFolding means the folding service is configured but unreachable or
	// erroring. Never masked as a "stable" result.
	ErrFolding = errs.Class("folding service")

	// ErrExhausted means a symbol spent its whole retry budget without an
	// acceptable sequence. Terminal for the symbol, not the run.
	ErrExhausted = errs.Class("retry budget exhausted")
)
