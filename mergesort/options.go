package mergesort

import (
	"runtime"

	"pingcap/talentplan/tidb/psort/forkjoin"
)

const (
	// DefaultSortCutoff is the length at or below which a sort runs
	// sequentially in the current task.
	DefaultSortCutoff = 4096
	// DefaultMergeCutoff is the combined length at or below which a merge is
	// done with a sequential two-finger merge.
	DefaultMergeCutoff = 4096
)

// Option configures Sort and Merge.
type Option func(*options)

type options struct {
	workers     int
	sortCutoff  int
	mergeCutoff int
	pool        *forkjoin.Pool
}

func newOptions(opts []Option) options {
	o := options{
		workers:     runtime.GOMAXPROCS(0),
		sortCutoff:  DefaultSortCutoff,
		mergeCutoff: DefaultMergeCutoff,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithWorkers sets the number of pool workers. n <= 0 means GOMAXPROCS.
// It is ignored when WithPool is given.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithSortCutoff sets the granularity cutoff for the recursive sort. A cutoff
// of 1 forks on every recursive call.
func WithSortCutoff(n int) Option {
	return func(o *options) {
		o.sortCutoff = max(n, 1)
	}
}

// WithMergeCutoff sets the granularity cutoff for the parallel merge. A
// cutoff of 1 splits every merge by rank down to the base cases.
func WithMergeCutoff(n int) Option {
	return func(o *options) {
		o.mergeCutoff = max(n, 1)
	}
}

// WithPool runs on a caller-owned pool instead of a pool created and closed
// for the single call. The pool is not closed.
func WithPool(p *forkjoin.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// acquire returns the pool to run on and the function that releases it.
func (o options) acquire() (*forkjoin.Pool, func()) {
	if o.pool != nil {
		return o.pool, func() {}
	}
	p := forkjoin.New(o.workers)
	return p, p.Close
}
