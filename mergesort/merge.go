package mergesort

import (
	"golang.org/x/exp/constraints"
)

// Merge merges two ascending slices into a newly allocated ascending slice.
// On equal keys the elements of a come before those of b.
func Merge[K constraints.Ordered](a, b []K, opts ...Option) []K {
	return MergeFunc(a, b, compareOrdered[K], opts...)
}

// MergeFunc is Merge under the ordering defined by cmp. Both inputs must be
// sorted by cmp. A panic in cmp is re-raised as a *forkjoin.TaskPanic once
// every sub-merge has finished.
func MergeFunc[E any](a, b []E, cmp func(a, b E) int, opts ...Option) []E {
	if cmp == nil {
		panic(ErrNilCompare)
	}
	dst := make([]E, len(a)+len(b))
	if len(dst) == 0 {
		return dst
	}
	o := newOptions(opts)
	pool, release := o.acquire()
	defer release()
	e := newEngine(nil, pool, cmp, o)
	e.merge(dst, a, b, true)
	return dst
}

// merge writes the stable merge of a and b into dst. aFirst reports whether
// a holds the elements that came earlier in the original sequence; equal keys
// from the earlier source are placed first.
func (e *engine[E]) merge(dst, a, b []E, aFirst bool) {
	if len(a) < len(b) {
		a, b = b, a
		aFirst = !aFirst
	}
	if len(dst) != len(a)+len(b) {
		invariant("merge output has length %d, inputs %d+%d", len(dst), len(a), len(b))
	}

	switch {
	case len(b) == 0:
		copy(dst, a)
		return
	case len(b) == 1:
		k := e.split(b[0], a, !aFirst)
		copy(dst, a[:k+1])
		dst[k+1] = b[0]
		copy(dst[k+2:], a[k+1:])
		return
	case len(dst) <= e.mergeCutoff:
		e.mergeSeq(dst, a, b, aFirst)
		return
	}

	// len(a) >= len(b) >= 2: split a in half and b at the rank of a's last
	// left-half element. k == -1 leaves the left b-part empty, k == len(b)-1
	// leaves the right one empty.
	mid := len(a) / 2
	k := e.split(a[mid-1], b, aFirst)
	n := mid + k + 1
	e.fork(
		func() { e.merge(dst[:n], a[:mid], b[:k+1], aFirst) },
		func() { e.merge(dst[n:], a[mid:], b[k+1:], aFirst) },
	)
}

// split returns the boundary in sorted for v. A value from the earlier source
// goes before equal elements of the later one, and vice versa.
func (e *engine[E]) split(v E, sorted []E, vFirst bool) int {
	var k int
	if vFirst {
		k = rankBelow(v, sorted, e.cmp)
	} else {
		k = RankFunc(v, sorted, e.cmp)
	}
	if k < -1 || k >= len(sorted) {
		invariant("rank %d out of range [-1, %d]", k, len(sorted)-1)
	}
	return k
}

func (e *engine[E]) mergeSeq(dst, a, b []E, aFirst bool) {
	if !aFirst {
		a, b = b, a
	}
	i, j, n := 0, 0, 0
	for i < len(a) && j < len(b) {
		if e.cmp(b[j], a[i]) < 0 {
			dst[n] = b[j]
			j++
		} else {
			dst[n] = a[i]
			i++
		}
		n++
	}
	n += copy(dst[n:], a[i:])
	copy(dst[n:], b[j:])
}
