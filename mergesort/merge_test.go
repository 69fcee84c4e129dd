package mergesort

import (
	"math/rand"
	"sort"

	"github.com/go-test/deep"
	"github.com/pingcap/check"
)

var _ = check.Suite(&mergeTestSuite{})

type mergeTestSuite struct{}

func (s *mergeTestSuite) TestMergeScenario(c *check.C) {
	got := Merge([]int{1, 3, 5}, []int{2, 2, 4}, WithMergeCutoff(1))
	c.Assert(deep.Equal(got, []int{1, 2, 2, 3, 4, 5}), check.IsNil)
}

func (s *mergeTestSuite) TestMergeShapes(c *check.C) {
	for _, t := range []struct {
		a, b []int
	}{
		{nil, nil},
		{[]int{1}, nil},
		{nil, []int{1}},
		{[]int{2}, []int{1}},
		{[]int{1, 2, 3}, []int{0}},
		{[]int{1, 2, 3}, []int{4}},
		{[]int{1, 2, 3}, []int{2}},
		{[]int{1, 3, 5, 7}, []int{2, 4, 6, 8}},
		{[]int{5, 6, 7, 8}, []int{1, 2}},         // all of b below the pivot
		{[]int{1, 2, 3, 4}, []int{8, 9}},         // all of b above the pivot
		{[]int{1, 1, 1, 1}, []int{1, 1, 1}},      // duplicates spanning both
		{[]int{0, 100}, []int{1, 2, 3, 4, 5, 6}}, // highly unequal
	} {
		want := append(append([]int{}, t.a...), t.b...)
		sort.Ints(want)
		for _, cutoff := range []int{1, DefaultMergeCutoff} {
			got := Merge(t.a, t.b, WithWorkers(2), WithMergeCutoff(cutoff))
			c.Assert(len(got), check.Equals, len(t.a)+len(t.b))
			c.Assert(deep.Equal(got, want), check.IsNil, check.Commentf("a=%v b=%v cutoff=%d", t.a, t.b, cutoff))
		}
	}
}

func (s *mergeTestSuite) TestMergeRandom(c *check.C) {
	r := rand.New(rand.NewSource(17))
	for round := 0; round < 50; round++ {
		a := make([]int64, r.Intn(500))
		b := make([]int64, r.Intn(50))
		prepareDups(a, int64(round), 60)
		prepareDups(b, int64(round+1000), 60)
		sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
		sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })

		got := Merge(a, b, WithWorkers(4), WithMergeCutoff(1))
		c.Assert(IsSorted(got), check.IsTrue)
		assertPermutation(c, append(append([]int64{}, a...), b...), got)
	}
}

func (s *mergeTestSuite) TestMergeKeepsSourceOrder(c *check.C) {
	// Every key appears in both inputs; a's copies must come first whichever
	// input is longer.
	for _, lens := range [][2]int{{40, 12}, {12, 40}, {25, 25}, {1, 9}, {9, 1}} {
		a := make([]record, lens[0])
		b := make([]record, lens[1])
		for i := range a {
			a[i] = record{key: i * 5 / lens[0], seq: i}
		}
		for i := range b {
			b[i] = record{key: i * 5 / lens[1], seq: 1000 + i}
		}
		got := MergeFunc(a, b, compareRecords, WithMergeCutoff(1))
		c.Assert(len(got), check.Equals, len(a)+len(b))
		for i := 1; i < len(got); i++ {
			c.Assert(got[i].key >= got[i-1].key, check.IsTrue)
			if got[i].key == got[i-1].key {
				c.Assert(got[i].seq > got[i-1].seq, check.IsTrue, check.Commentf("lens=%v at %d: %v", lens, i, got))
			}
		}
	}
}
