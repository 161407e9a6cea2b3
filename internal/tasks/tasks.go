// Package tasks provides the FIFO queues the editor hands work to: a
// background worker goroutine for history updates and a foreground pump the
// host drains from its own loop.
package tasks

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned when posting to a closed worker.
var ErrClosed = errors.New("queue closed")

// Queue runs posted tasks in the order they were posted.
type Queue interface {
	Post(task func()) error
}

// Scheduler splits work between a background and a foreground queue.
type Scheduler interface {
	Background(task func()) error
	Foreground(task func()) error
}

// Queues is a Scheduler over two queues.
type Queues struct {
	Back  Queue
	Front Queue
}

// Background posts task to the background queue.
func (q Queues) Background(task func()) error {
	return q.Back.Post(task)
}

// Foreground posts task to the foreground queue.
func (q Queues) Foreground(task func()) error {
	return q.Front.Post(task)
}

// Sync returns a scheduler that runs every task on the posting goroutine.
func Sync() Scheduler {
	return Queues{Back: Inline{}, Front: Inline{}}
}

// Inline runs tasks immediately on the caller.
type Inline struct{}

// Post runs task.
func (Inline) Post(task func()) error {
	task()
	return nil
}

// Worker runs tasks on its own goroutine.
type Worker struct {
	name  string
	log   *zap.Logger
	tasks chan func()
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewWorker starts a worker with room for buffer pending tasks. Post blocks
// while the buffer is full.
func NewWorker(name string, buffer int, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Worker{
		name:  name,
		log:   log,
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Post queues task.
func (w *Worker) Post(task func()) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrClosed
	}
	w.tasks <- task
	return nil
}

// Flush blocks until every task posted before it has run.
func (w *Worker) Flush() error {
	done := make(chan struct{})
	if err := w.Post(func() { close(done) }); err != nil {
		return err
	}
	<-done
	return nil
}

// Close stops accepting tasks and waits for the queued ones to finish.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.tasks)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	for task := range w.tasks {
		w.exec(task)
	}
}

func (w *Worker) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("task panicked", zap.String("worker", w.name), zap.Any("panic", r))
		}
	}()
	task()
}

// Pump holds tasks until the owner drains them, typically once per frame.
type Pump struct {
	mu    sync.Mutex
	queue []func()
}

// NewPump returns an empty pump.
func NewPump() *Pump {
	return &Pump{}
}

// Post queues task.
func (p *Pump) Post(task func()) error {
	p.mu.Lock()
	p.queue = append(p.queue, task)
	p.mu.Unlock()
	return nil
}

// Len returns the number of queued tasks.
func (p *Pump) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Drain runs the tasks queued so far and returns how many ran. Tasks posted
// while draining wait for the next call.
func (p *Pump) Drain() int {
	p.mu.Lock()
	queue := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, task := range queue {
		task()
	}
	return len(queue)
}
