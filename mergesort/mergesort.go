// Package mergesort implements a stable parallel merge sort whose merge step
// is itself parallel.
//
// A sort halves its input, sorts both halves as a fork-join pair and merges
// them. The merge takes the middle of the longer input, finds its rank in the
// shorter one by binary search and merges the two resulting pairs as another
// fork-join pair, so a merge of n elements has O(log² n) span instead of O(n).
// Work below a size cutoff runs sequentially in the current task.
package mergesort

import (
	"context"
	"runtime/debug"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"pingcap/talentplan/tidb/psort/forkjoin"
)

// insertionCutoff is the length at or below which the sequential sort
// switches to binary insertion sort.
const insertionCutoff = 16

// Sort sorts data in ascending order. The sort is stable, and its result does
// not depend on the number of workers.
func Sort[K constraints.Ordered](data []K, opts ...Option) {
	SortFunc(data, compareOrdered[K], opts...)
}

// SortFunc sorts data in ascending order as determined by cmp, which must be
// a strict weak ordering returning a negative number when a < b, a positive
// number when a > b and zero otherwise. A panic in cmp is re-raised and
// leaves data unmodified.
func SortFunc[E any](data []E, cmp func(a, b E) int, opts ...Option) {
	if cmp == nil {
		panic(ErrNilCompare)
	}
	if err := SortFuncContext(context.Background(), data, cmp, opts...); err != nil {
		if tp, ok := errors.Cause(err).(*forkjoin.TaskPanic); ok {
			panic(tp)
		}
		panic(err)
	}
}

// SortContext is Sort with cancellation. Once ctx is done no new sub-tasks
// are started, the running ones finish, and the context error is returned.
// data is only written when the whole sort succeeds.
func SortContext[K constraints.Ordered](ctx context.Context, data []K, opts ...Option) error {
	return SortFuncContext(ctx, data, compareOrdered[K], opts...)
}

// SortFuncContext is SortFunc with cancellation, see SortContext. A panic in
// cmp is returned as an error wrapping a *forkjoin.TaskPanic.
func SortFuncContext[E any](ctx context.Context, data []E, cmp func(a, b E) int, opts ...Option) error {
	if cmp == nil {
		return errors.WithStack(ErrNilCompare)
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "mergesort: sort cancelled")
	}
	if len(data) <= 1 {
		return nil
	}

	o := newOptions(opts)
	pool, release := o.acquire()
	defer release()
	glog.V(3).Infof("mergesort: sorting %d elements on %d workers, sort cutoff %d, merge cutoff %d",
		len(data), pool.NumWorkers(), o.sortCutoff, o.mergeCutoff)

	work := make([]E, len(data))
	copy(work, data)
	buf := make([]E, len(data))

	e := newEngine(ctx, pool, cmp, o)
	if err := e.run(func() { e.sort(work, buf) }); err != nil {
		return err
	}
	copy(data, work)
	return nil
}

// IsSorted reports whether data is in ascending order.
func IsSorted[K constraints.Ordered](data []K) bool {
	return IsSortedFunc(data, compareOrdered[K])
}

// IsSortedFunc reports whether data is in ascending order as determined by cmp.
func IsSortedFunc[E any](data []E, cmp func(a, b E) int) bool {
	for i := len(data) - 1; i > 0; i-- {
		if cmp(data[i], data[i-1]) < 0 {
			return false
		}
	}
	return true
}

type engine[E any] struct {
	ctx         context.Context
	pool        *forkjoin.Pool
	cmp         func(a, b E) int
	sortCutoff  int
	mergeCutoff int
	aborted     atomic.Bool
}

func newEngine[E any](ctx context.Context, pool *forkjoin.Pool, cmp func(a, b E) int, o options) *engine[E] {
	return &engine[E]{
		ctx:         ctx,
		pool:        pool,
		cmp:         cmp,
		sortCutoff:  o.sortCutoff,
		mergeCutoff: o.mergeCutoff,
	}
}

// run calls fn and turns task faults and cancellation into errors. Broken
// invariants keep panicking.
func (e *engine[E]) run(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		tp, ok := r.(*forkjoin.TaskPanic)
		if !ok {
			tp = &forkjoin.TaskPanic{Value: r, Stack: debug.Stack()}
		}
		if isInvariant(tp.Value) {
			panic(r)
		}
		err = errors.Wrap(tp, "mergesort: sort failed")
	}()
	fn()
	if e.aborted.Load() {
		return errors.Wrap(e.ctx.Err(), "mergesort: sort cancelled")
	}
	return nil
}

// fork runs f and g as a fork-join pair unless the sort has been cancelled.
func (e *engine[E]) fork(f, g func()) {
	if e.ctx != nil && e.ctx.Err() != nil {
		e.aborted.Store(true)
		return
	}
	e.pool.Do(f, g)
}

// sort sorts data using buf, which has the same length, as scratch space.
// Split, fork, join, merge and write back happen exactly once per call.
func (e *engine[E]) sort(data, buf []E) {
	n := len(data)
	if n <= 1 {
		return
	}
	if n <= e.sortCutoff {
		e.sortSeq(data, buf)
		return
	}

	h := n / 2
	e.fork(
		func() { e.sort(data[:h], buf[:h]) },
		func() { e.sort(data[h:], buf[h:]) },
	)
	if e.aborted.Load() {
		return
	}
	e.merge(buf, data[:h], data[h:], true)
	copy(data, buf)
}

func (e *engine[E]) sortSeq(data, buf []E) {
	n := len(data)
	if n <= insertionCutoff {
		e.insertionSort(data)
		return
	}
	h := n / 2
	e.sortSeq(data[:h], buf[:h])
	e.sortSeq(data[h:], buf[h:])
	if e.cmp(data[h], data[h-1]) >= 0 {
		return
	}
	e.mergeSeq(buf, data[:h], data[h:], true)
	copy(data, buf)
}

// insertionSort is a stable binary insertion sort.
func (e *engine[E]) insertionSort(data []E) {
	for i := 1; i < len(data); i++ {
		pivot := data[i]
		lo, hi := 0, i
		for lo < hi {
			mid := int(uint(lo+hi) >> 1)
			if e.cmp(data[mid], pivot) > 0 {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		copy(data[lo+1:i+1], data[lo:i])
		data[lo] = pivot
	}
}
