// Package workerpool manages small sets of long-lived, reusable workers.
// Workers are created lazily, handed out with exclusive ownership, and must
// be explicitly released (back to the idle set) or terminated (destroyed)
// by the caller. There is no implicit collection of acquired workers.
//
// The pool itself is safe for concurrent use; a worker instance is owned by
// exactly one caller between Acquire and Release/Terminate.
package workerpool

import (
	"context"
	"sync"

	"github.com/jackc/puddle/v2"
)

// Constructor builds a new worker value. It is invoked on Acquire when no
// idle worker exists. A constructor error is surfaced to the acquiring
// caller unchanged; nothing is retried.
type Constructor[T any] func(ctx context.Context) (T, error)

// Destructor tears a worker down when it is terminated or the pool closes.
type Destructor[T any] func(value T)

// Pool holds idle workers of one kind for reuse.
type Pool[T any] struct {
	p *puddle.Pool[T]
}

// New creates a pool bounded at maxSize live workers. A nil destructor is
// replaced with a no-op.
func New[T any](ctor Constructor[T], dtor Destructor[T], maxSize int32) (*Pool[T], error) {
	if dtor == nil {
		dtor = func(T) {}
	}
	p, err := puddle.NewPool(&puddle.Config[T]{
		Constructor: puddle.Constructor[T](ctor),
		Destructor:  puddle.Destructor[T](dtor),
		MaxSize:     maxSize,
	})
	if err != nil {
		return nil, err
	}
	return &Pool[T]{p: p}, nil
}

// Acquire returns an idle worker, constructing one if none are idle. It
// blocks when the pool is at capacity until a worker is released or ctx is
// done.
func (p *Pool[T]) Acquire(ctx context.Context) (*Worker[T], error) {
	res, err := p.p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Worker[T]{res: res}, nil
}

// IdleCount reports how many constructed workers are currently idle.
func (p *Pool[T]) IdleCount() int {
	return int(p.p.Stat().IdleResources())
}

// Close destroys all idle workers and rejects further acquisitions.
func (p *Pool[T]) Close() {
	p.p.Close()
}

// Worker is an exclusively-owned handle on a pooled worker. Exactly one of
// Release or Terminate should be called when done; later calls on the same
// handle are no-ops, so a deferred Release is always safe.
type Worker[T any] struct {
	res  *puddle.Resource[T]
	once sync.Once
}

// Value returns the underlying worker.
func (w *Worker[T]) Value() T {
	return w.res.Value()
}

// Release returns the worker to the idle set for reuse.
func (w *Worker[T]) Release() {
	w.once.Do(w.res.Release)
}

// Terminate destroys the worker instead of recycling it.
func (w *Worker[T]) Terminate() {
	w.once.Do(w.res.Destroy)
}
