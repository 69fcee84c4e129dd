package forkjoin

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pingcap/check"
	"github.com/pkg/errors"
)

var _ = check.Suite(&poolTestSuite{})

func TestT(t *testing.T) {
	check.TestingT(t)
}

type poolTestSuite struct{}

func fib(p *Pool, n int) int {
	if n < 2 {
		return n
	}
	a, b := Invoke(p,
		func() int { return fib(p, n-1) },
		func() int { return fib(p, n-2) },
	)
	return a + b
}

func (s *poolTestSuite) TestNew(c *check.C) {
	pool := New(4)
	defer pool.Close()
	c.Assert(pool.NumWorkers(), check.Equals, 4)

	dflt := New(0)
	defer dflt.Close()
	c.Assert(dflt.NumWorkers() > 0, check.IsTrue)
}

func (s *poolTestSuite) TestDoRunsBoth(c *check.C) {
	pool := New(2)
	defer pool.Close()

	var f, g int32
	pool.Do(func() { atomic.AddInt32(&f, 1) }, func() { atomic.AddInt32(&g, 1) })
	c.Assert(atomic.LoadInt32(&f), check.Equals, int32(1))
	c.Assert(atomic.LoadInt32(&g), check.Equals, int32(1))
}

func (s *poolTestSuite) TestNestedInvoke(c *check.C) {
	for _, workers := range []int{1, 2, 8} {
		pool := New(workers)
		c.Assert(fib(pool, 22), check.Equals, 17711, check.Commentf("workers=%d", workers))
		pool.Close()
	}
}

func (s *poolTestSuite) TestGoroutinesBounded(c *check.C) {
	const workers, callers = 2, 8
	base := runtime.NumGoroutine()
	pool := New(workers)
	defer pool.Close()

	var peak int64
	var sample func(n int) int
	sample = func(n int) int {
		if n < 2 {
			g := int64(runtime.NumGoroutine())
			for {
				cur := atomic.LoadInt64(&peak)
				if g <= cur || atomic.CompareAndSwapInt64(&peak, cur, g) {
					break
				}
			}
			return n
		}
		a, b := Invoke(pool,
			func() int { return sample(n - 1) },
			func() int { return sample(n - 2) },
		)
		return a + b
	}

	var wg sync.WaitGroup
	results := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = sample(18)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		c.Assert(r, check.Equals, 2584)
	}
	c.Assert(atomic.LoadInt64(&peak) <= int64(base+workers+callers), check.IsTrue,
		check.Commentf("base=%d peak=%d", base, atomic.LoadInt64(&peak)))
}

func (s *poolTestSuite) TestStatsAccountForEveryCall(c *check.C) {
	pool := New(3)
	fib(pool, 15)
	pool.Close()

	// fib(15) makes fib(16)-1 = 986 calls with n >= 2, one Do each.
	st := pool.Stats()
	c.Assert(st.Forked+st.Inline, check.Equals, int64(986))
	c.Assert(st.Stolen+st.Reclaimed, check.Equals, st.Forked)
}

func (s *poolTestSuite) TestPanicWaitsForSibling(c *check.C) {
	pool := New(2)
	defer pool.Close()

	var sibling int32
	boom := errors.New("boom")
	var fault interface{}
	func() {
		defer func() { fault = recover() }()
		pool.Do(func() { panic(boom) }, func() { atomic.StoreInt32(&sibling, 1) })
	}()
	c.Assert(atomic.LoadInt32(&sibling), check.Equals, int32(1))
	tp, ok := fault.(*TaskPanic)
	c.Assert(ok, check.IsTrue)
	c.Assert(tp.Unwrap(), check.Equals, boom)
	c.Assert(len(tp.Stack) > 0, check.IsTrue)
}

func (s *poolTestSuite) TestPanicInForkedSide(c *check.C) {
	pool := New(2)
	defer pool.Close()

	var first int32
	var fault interface{}
	func() {
		defer func() { fault = recover() }()
		pool.Do(func() { atomic.StoreInt32(&first, 1) }, func() { panic("right") })
	}()
	c.Assert(atomic.LoadInt32(&first), check.Equals, int32(1))
	tp, ok := fault.(*TaskPanic)
	c.Assert(ok, check.IsTrue)
	c.Assert(tp.Value, check.Equals, "right")
	c.Assert(tp.Unwrap(), check.IsNil)
}

func (s *poolTestSuite) TestNestedPanicKeepsInnermost(c *check.C) {
	pool := New(4)
	defer pool.Close()

	var fault interface{}
	func() {
		defer func() { fault = recover() }()
		pool.Do(func() {}, func() {
			pool.Do(func() { panic("deep") }, func() {})
		})
	}()
	tp, ok := fault.(*TaskPanic)
	c.Assert(ok, check.IsTrue)
	c.Assert(tp.Value, check.Equals, "deep")
}

func (s *poolTestSuite) TestCloseMultipleTimes(c *check.C) {
	pool := New(4)
	pool.Close()
	pool.Close()
}

func (s *poolTestSuite) TestDoAfterClose(c *check.C) {
	pool := New(2)
	pool.Close()

	c.Assert(fib(pool, 10), check.Equals, 55)
	st := pool.Stats()
	c.Assert(st.Forked, check.Equals, int64(0))
	c.Assert(st.Inline > 0, check.IsTrue)
}
