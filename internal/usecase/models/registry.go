package models

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Model names known to the registry.
const (
	NameClassifier  = "classifier"
	NameGenerator   = "generator"
	NameTranscriber = "transcriber"
)

// Lazy holds one expensive model handle. Concurrent callers share a single
// in-flight load. A successful load is kept; a failed one is reported by
// Status and retried by the next Get.
type Lazy[T any] struct {
	name string
	load func(ctx context.Context) (T, error)

	mu       sync.Mutex
	ready    bool
	value    T
	loaded   time.Time
	lastErr  error
	inflight *attempt[T]
}

type attempt[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func NewLazy[T any](name string, load func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{name: name, load: load}
}

// Get returns the handle, loading it on first use. The load ignores
// cancellation of ctx, so a caller that gives up early leaves it running
// for whoever asks next.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	if l.ready {
		v := l.value
		l.mu.Unlock()
		return v, nil
	}
	a := l.inflight
	if a == nil {
		a = &attempt[T]{done: make(chan struct{})}
		l.inflight = a
		go l.run(context.WithoutCancel(ctx), a)
	}
	l.mu.Unlock()

	select {
	case <-a.done:
		return a.value, a.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("load %s: %w", l.name, ctx.Err())
	}
}

func (l *Lazy[T]) run(ctx context.Context, a *attempt[T]) {
	v, err := l.load(ctx)

	l.mu.Lock()
	if err != nil {
		a.err = fmt.Errorf("load %s: %w", l.name, err)
		l.lastErr = a.err
	} else {
		a.value = v
		l.ready, l.value, l.loaded, l.lastErr = true, v, time.Now(), nil
	}
	l.inflight = nil
	l.mu.Unlock()
	close(a.done)
}

// Status reports the load state without triggering a load.
func (l *Lazy[T]) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.ready:
		loaded := l.loaded
		return Status{Name: l.name, State: StateReady, LoadedAt: &loaded}
	case l.inflight == nil && l.lastErr != nil:
		return Status{Name: l.name, State: StateFailed, Error: l.lastErr.Error()}
	default:
		return Status{Name: l.name, State: StatePending}
	}
}

func (l *Lazy[T]) preload(ctx context.Context) error {
	_, err := l.Get(ctx)
	return err
}

// Load states reported by Status.
const (
	StatePending = "pending"
	StateReady   = "ready"
	StateFailed  = "failed"
)

// Status describes one registered model.
type Status struct {
	Name     string     `json:"name"`
	State    string     `json:"state"`
	Error    string     `json:"error,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

type entry interface {
	preload(ctx context.Context) error
	Status() Status
}

// Registry owns the process-wide model handles.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{entries: make(map[string]entry), logger: logger}
}

// Register creates a lazy handle and adds it to r under name.
func Register[T any](r *Registry, name string, load func(ctx context.Context) (T, error)) *Lazy[T] {
	l := NewLazy(name, load)
	r.mu.Lock()
	r.entries[name] = l
	r.mu.Unlock()
	return l
}

// Preload loads every registered model concurrently. One failure does not
// stop the others; all failures are returned keyed by name.
func (r *Registry) Preload(ctx context.Context) map[string]error {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed = make(map[string]error)
	)
	for _, name := range names {
		e := r.lookup(name)
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			if err := e.preload(ctx); err != nil {
				r.logger.Warn("model preload failed", zap.String("model", name), zap.Error(err))
				mu.Lock()
				failed[name] = err
				mu.Unlock()
				return
			}
			r.logger.Info("model ready", zap.String("model", name), zap.Duration("took", time.Since(start)))
		}()
	}
	wg.Wait()
	return failed
}

// Statuses lists every registered model sorted by name.
func (r *Registry) Statuses() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) lookup(name string) entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name]
}
