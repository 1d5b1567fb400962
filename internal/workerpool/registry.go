package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownKind is returned when acquiring a worker kind that was never
// registered.
var ErrUnknownKind = errors.New("unknown worker kind")

// Registry maps worker kinds ("crypto", ...) to their pools. It is the
// process-wide entry point: register each kind once at start-up, then
// Acquire from any goroutine.
type Registry[T any] struct {
	mu    sync.RWMutex
	pools map[string]*Pool[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{pools: make(map[string]*Pool[T])}
}

// Register creates the pool for kind. Registering the same kind twice is an
// error.
func (r *Registry[T]) Register(kind string, ctor Constructor[T], dtor Destructor[T], maxSize int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pools[kind]; ok {
		return fmt.Errorf("worker kind %q already registered", kind)
	}
	p, err := New(ctor, dtor, maxSize)
	if err != nil {
		return err
	}
	r.pools[kind] = p
	return nil
}

// Acquire hands out an exclusively-owned worker of the given kind, reusing
// an idle instance when one exists.
func (r *Registry[T]) Acquire(ctx context.Context, kind string) (*Worker[T], error) {
	r.mu.RLock()
	p, ok := r.pools[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return p.Acquire(ctx)
}

// Pool returns the pool registered for kind, or nil.
func (r *Registry[T]) Pool(kind string) *Pool[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pools[kind]
}

// Close closes every registered pool.
func (r *Registry[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pools {
		p.Close()
	}
}
