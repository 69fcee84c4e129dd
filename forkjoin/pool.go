// Package forkjoin runs pairs of independent computations on a bounded set of
// worker goroutines and joins on both before returning.
//
// Usage:
//
//	pool := forkjoin.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	left, right := forkjoin.Invoke(pool,
//	    func() int { return sum(xs[:mid]) },
//	    func() int { return sum(xs[mid:]) },
//	)
//
// A call to Do may itself call Do from inside either function. The second
// function is offered to the pool; the first runs on the calling goroutine.
// When the first returns, the caller takes the second back if no worker has
// started it yet, and otherwise helps drain the queue until it finishes. A
// caller only ever waits on a task that is already running, so nesting cannot
// deadlock and the number of goroutines never grows past the worker count
// plus the external callers.
package forkjoin

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

// Pool is a fixed set of worker goroutines draining a queue of forked tasks.
type Pool struct {
	numWorkers int
	taskC      chan *task
	wg         sync.WaitGroup
	closeOnce  sync.Once
	closed     atomic.Bool

	forked    atomic.Int64
	stolen    atomic.Int64
	reclaimed atomic.Int64
	inline    atomic.Int64
}

// Stats counts how forked work was executed.
type Stats struct {
	// Forked is the number of tasks that were queued.
	Forked int64
	// Stolen is the number of queued tasks run by a worker or by a joiner
	// helping while it waits. A joiner may help with a task it forked itself
	// in an outer Do.
	Stolen int64
	// Reclaimed is the number of queued tasks taken back by their joiner.
	Reclaimed int64
	// Inline is the number of Do calls that never queued, because the queue
	// was full or the pool was closed.
	Inline int64
}

// New creates a pool with numWorkers persistent workers.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		taskC:      make(chan *task, numWorkers*2),
	}
	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}
	glog.V(2).Infof("forkjoin: started pool with %d workers", numWorkers)
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.taskC {
		if t.claim() {
			p.stolen.Add(1)
			t.run()
		}
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Forked:    p.forked.Load(),
		Stolen:    p.stolen.Load(),
		Reclaimed: p.reclaimed.Load(),
		Inline:    p.inline.Load(),
	}
}

// Close stops the workers after the queue drains. It must not race with Do.
// Calling Close multiple times is safe; Do after Close runs sequentially.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.taskC)
		p.wg.Wait()
		s := p.Stats()
		glog.V(2).Infof("forkjoin: closed pool, forked=%d stolen=%d reclaimed=%d inline=%d",
			s.Forked, s.Stolen, s.Reclaimed, s.Inline)
	})
}

// Do runs f and g concurrently and returns when both have finished.
//
// If either function panics, the other still runs to completion and Do then
// panics with a *TaskPanic. When both panic, f's panic is raised.
func (p *Pool) Do(f, g func()) {
	t := newTask(g)
	if !p.offer(t) {
		p.inline.Add(1)
		ff := capture(f)
		fg := capture(g)
		raise(ff, fg)
		return
	}
	p.forked.Add(1)
	ff := capture(f)
	if t.claim() {
		p.reclaimed.Add(1)
		t.run()
	} else {
		p.help(t)
	}
	raise(ff, t.fault)
}

// Invoke is Do for functions that return values.
func Invoke[R1, R2 any](p *Pool, f func() R1, g func() R2) (r1 R1, r2 R2) {
	p.Do(func() { r1 = f() }, func() { r2 = g() })
	return r1, r2
}

func (p *Pool) offer(t *task) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case p.taskC <- t:
		return true
	default:
		return false
	}
}

// help runs other queued tasks until t is done.
func (p *Pool) help(t *task) {
	for {
		select {
		case <-t.done:
			return
		case other, ok := <-p.taskC:
			if !ok {
				<-t.done
				return
			}
			if other.claim() {
				p.stolen.Add(1)
				other.run()
			}
		}
	}
}

func raise(faults ...*TaskPanic) {
	for _, f := range faults {
		if f != nil {
			panic(f)
		}
	}
}
