package mandelbrot

import (
	"context"
	"runtime"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrShutdown is returned by Render on a cluster that has been shut down.
var ErrShutdown = errors.New("mandelbrot: cluster is shut down")

type rowTask struct {
	ctx    context.Context
	frame  Frame
	row    int
	values []int
	done   chan<- *rowTask
}

// Cluster represents a fixed set of row workers.
type Cluster struct {
	nWorkers int
	wg       sync.WaitGroup
	taskCh   chan *rowTask
	exit     chan struct{}
	stopOnce sync.Once
}

// NewCluster starts a cluster of nWorkers workers. nWorkers <= 0 means
// runtime.NumCPU().
func NewCluster(nWorkers int) *Cluster {
	if nWorkers <= 0 {
		nWorkers = runtime.NumCPU()
	}
	c := &Cluster{
		nWorkers: nWorkers,
		taskCh:   make(chan *rowTask),
		exit:     make(chan struct{}),
	}
	for i := 0; i < c.nWorkers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	glog.V(2).Infof("mandelbrot: started %d workers", nWorkers)
	return c
}

// NWorkers returns how many workers there are in this cluster.
func (c *Cluster) NWorkers() int { return c.nWorkers }

func (c *Cluster) worker() {
	defer c.wg.Done()
	for {
		select {
		case t := <-c.taskCh:
			t.values = t.frame.Row(t.row)
			select {
			case t.done <- t:
			case <-t.ctx.Done():
			}
		case <-c.exit:
			return
		}
	}
}

// Shutdown stops the workers. Calling it more than once is safe.
func (c *Cluster) Shutdown() {
	c.stopOnce.Do(func() {
		close(c.exit)
		c.wg.Wait()
		glog.V(2).Infof("mandelbrot: cluster shut down")
	})
}

// Render computes every row of f on the cluster's workers. Rows are handed
// out one at a time, so a worker that finishes early picks up the next row.
func (c *Cluster) Render(ctx context.Context, f Frame) (Grid, error) {
	if err := f.validate(); err != nil {
		return Grid{}, err
	}
	q := NewRowQueue(f.Height, f.Width)
	results := make(chan *rowTask)
	g, ctx := errgroup.WithContext(ctx)

	// dispatch
	g.Go(func() error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, ok := q.Next()
			if !ok {
				return nil
			}
			t := &rowTask{ctx: ctx, frame: f, row: row, done: results}
			select {
			case c.taskCh <- t:
			case <-c.exit:
				return ErrShutdown
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	// collect
	g.Go(func() error {
		for !q.Done() {
			select {
			case t := <-results:
				if err := q.Submit(t.row, t.values); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Grid{}, errors.Wrapf(err, "mandelbrot: render %dx%d", f.Width, f.Height)
	}
	glog.V(2).Infof("mandelbrot: rendered %dx%d on %d workers", f.Width, f.Height, c.nWorkers)
	return q.grid(f), nil
}

// RenderSequential computes f on the calling goroutine.
func RenderSequential(f Frame) (Grid, error) {
	if err := f.validate(); err != nil {
		return Grid{}, err
	}
	rows := make([][]int, f.Height)
	for i := range rows {
		rows[i] = f.Row(i)
	}
	return Grid{Frame: f, Rows: rows}, nil
}
