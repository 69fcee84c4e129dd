package mergesort

import "golang.org/x/exp/constraints"

// Rank returns the largest index k such that sorted[k] <= v, or -1 when v is
// smaller than every element. When several elements equal v the rightmost of
// them is returned, so rank(4, [1 2 4 4 7]) is 3.
func Rank[K constraints.Ordered](v K, sorted []K) int {
	return RankFunc(v, sorted, compareOrdered[K])
}

// RankFunc is Rank under the ordering defined by cmp.
func RankFunc[E any](v E, sorted []E, cmp func(a, b E) int) int {
	lo, hi := 0, len(sorted)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if cmp(sorted[mid], v) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// rankBelow returns the largest index k such that sorted[k] < v, or -1.
func rankBelow[E any](v E, sorted []E, cmp func(a, b E) int) int {
	lo, hi := 0, len(sorted)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if cmp(sorted[mid], v) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

func compareOrdered[K constraints.Ordered](a, b K) int {
	switch {
	case a < b:
		return -1
	case b < a:
		return 1
	}
	return 0
}
