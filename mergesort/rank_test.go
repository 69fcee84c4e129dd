package mergesort

import (
	"github.com/pingcap/check"
)

var _ = check.Suite(&rankTestSuite{})

type rankTestSuite struct{}

func (s *rankTestSuite) TestRank(c *check.C) {
	seq := []int{1, 2, 4, 4, 7}
	for _, t := range []struct {
		v     int
		rank  int
		below int
	}{
		{0, -1, -1}, // below min
		{1, 0, -1},
		{3, 1, 1}, // between elements
		{4, 3, 1}, // duplicates: rightmost equal, and last strictly smaller
		{5, 3, 3},
		{7, 4, 3},
		{100, 4, 4}, // above max
	} {
		c.Assert(Rank(t.v, seq), check.Equals, t.rank, check.Commentf("v=%d", t.v))
		c.Assert(rankBelow(t.v, seq, compareOrdered[int]), check.Equals, t.below, check.Commentf("v=%d", t.v))
	}
}

func (s *rankTestSuite) TestRankAllEqual(c *check.C) {
	seq := []string{"b", "b", "b"}
	c.Assert(Rank("b", seq), check.Equals, 2)
	c.Assert(Rank("a", seq), check.Equals, -1)
	c.Assert(Rank("c", seq), check.Equals, 2)
	c.Assert(rankBelow("b", seq, compareOrdered[string]), check.Equals, -1)
}

func (s *rankTestSuite) TestRankSingleton(c *check.C) {
	seq := []float64{1.5}
	c.Assert(Rank(1.0, seq), check.Equals, -1)
	c.Assert(Rank(1.5, seq), check.Equals, 0)
	c.Assert(Rank(2.0, seq), check.Equals, 0)
}

func (s *rankTestSuite) TestRankMatchesLinearScan(c *check.C) {
	seq := make([]int64, 300)
	prepareDups(seq, 1, 40)
	Sort(seq)
	for v := int64(-1); v <= 41; v++ {
		want := -1
		for i, x := range seq {
			if x <= v {
				want = i
			}
		}
		c.Assert(Rank(v, seq), check.Equals, want, check.Commentf("v=%d", v))
	}
}
