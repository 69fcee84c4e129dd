package forkjoin

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

const (
	taskPending int32 = iota
	taskRunning
	taskDone
)

type task struct {
	fn    func()
	state atomic.Int32
	done  chan struct{}
	fault *TaskPanic
}

func newTask(fn func()) *task {
	return &task{fn: fn, done: make(chan struct{})}
}

// claim moves t from pending to running. Exactly one caller wins.
func (t *task) claim() bool {
	return t.state.CompareAndSwap(taskPending, taskRunning)
}

func (t *task) run() {
	t.fault = capture(t.fn)
	t.state.Store(taskDone)
	close(t.done)
}

// TaskPanic carries a panic raised inside a forked computation to the
// goroutine that joined on it.
type TaskPanic struct {
	Value interface{}
	Stack []byte
}

func (p *TaskPanic) Error() string {
	return fmt.Sprintf("forkjoin: task panicked: %v", p.Value)
}

// Unwrap returns the panic value when it is an error.
func (p *TaskPanic) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}

func capture(fn func()) (fault *TaskPanic) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		// A nested Do already wrapped it; keep the innermost stack.
		if tp, ok := r.(*TaskPanic); ok {
			fault = tp
			return
		}
		fault = &TaskPanic{Value: r, Stack: debug.Stack()}
	}()
	fn()
	return nil
}
