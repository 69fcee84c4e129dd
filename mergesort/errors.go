package mergesort

import "github.com/pkg/errors"

var (
	// ErrNilCompare is returned when a nil comparison function is supplied.
	ErrNilCompare = errors.New("mergesort: nil compare function")
	// ErrInvariant marks a broken internal invariant. It is raised with panic,
	// never returned: it means the implementation is wrong, not the input.
	ErrInvariant = errors.New("mergesort: internal invariant violated")
)

func invariant(format string, args ...interface{}) {
	panic(errors.Wrapf(ErrInvariant, format, args...))
}

func isInvariant(v interface{}) bool {
	err, ok := v.(error)
	return ok && errors.Cause(err) == ErrInvariant
}
