package mandelbrot

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrRowNotAssigned is returned when a row is submitted before Next handed it out.
	ErrRowNotAssigned = errors.New("mandelbrot: row was not assigned")
	// ErrRowSubmitted is returned when a row is submitted twice.
	ErrRowSubmitted = errors.New("mandelbrot: row already submitted")
	// ErrRowWidth is returned when a submitted row has the wrong number of values.
	ErrRowWidth = errors.New("mandelbrot: row has wrong width")
)

// RowQueue hands out row indexes and collects the finished rows.
type RowQueue struct {
	mu        sync.Mutex
	width     int
	next      int
	rows      [][]int
	collected int
}

// NewRowQueue creates a queue over height rows of width values each.
func NewRowQueue(height, width int) *RowQueue {
	return &RowQueue{
		width: width,
		rows:  make([][]int, height),
	}
}

// Next returns the next unassigned row. ok is false once every row has been
// handed out.
func (q *RowQueue) Next() (row int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.next == len(q.rows) {
		return 0, false
	}
	row = q.next
	q.next++
	return row, true
}

// Submit stores the values of an assigned row.
func (q *RowQueue) Submit(row int, values []int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch {
	case row < 0 || row >= q.next:
		return errors.Wrapf(ErrRowNotAssigned, "row %d", row)
	case q.rows[row] != nil:
		return errors.Wrapf(ErrRowSubmitted, "row %d", row)
	case len(values) != q.width:
		return errors.Wrapf(ErrRowWidth, "row %d has %d values, want %d", row, len(values), q.width)
	}
	q.rows[row] = values
	q.collected++
	return nil
}

// Done reports whether every row has been collected.
func (q *RowQueue) Done() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.collected == len(q.rows)
}

func (q *RowQueue) grid(f Frame) Grid {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Grid{Frame: f, Rows: q.rows}
}
