package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"studyhub-client/internal/domain"
)

// State is a snapshot of a resource family as a renderer sees it.
type State[T any, R any] struct {
	Items   []T
	Current *T
	Result  *R
	Loading bool
	Error   string
}

// Store is the async-lifecycle container shared by every resource family.
// Each operation marks the store loading, runs its remote call outside the
// lock, then applies its merge rule to the state as it is at completion time.
// Concurrent operations are not coalesced; the last completion wins per field.
type Store[T any, R any] struct {
	id     func(T) string
	clone  func(T) T
	logger *zap.Logger

	mu          sync.RWMutex
	items       []T
	current     *T
	result      *R
	inflight    int
	err         string
	subscribers map[chan State[T, R]]struct{}
}

// NewStore builds a store whose entities are identified by id. clone, when
// non-nil, deep-copies entities crossing the store boundary.
func NewStore[T any, R any](id func(T) string, clone func(T) T, logger *zap.Logger) *Store[T, R] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store[T, R]{
		id:          id,
		clone:       clone,
		logger:      logger,
		subscribers: make(map[chan State[T, R]]struct{}),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store[T, R]) Snapshot() State[T, R] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Watch returns a channel receiving a snapshot after every state change,
// starting with the current one. The caller must invoke cancel to avoid leaks.
func (s *Store[T, R]) Watch() (<-chan State[T, R], func()) {
	ch := make(chan State[T, R], 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// SetCurrent selects an entity without a remote call.
func (s *Store[T, R]) SetCurrent(v T) {
	s.mutate(func() {
		c := s.clone(v)
		s.current = &c
	})
}

func (s *Store[T, R]) ClearCurrent() {
	s.mutate(func() { s.current = nil })
}

func (s *Store[T, R]) ClearResult() {
	s.mutate(func() { s.result = nil })
}

func (s *Store[T, R]) ResetError() {
	s.mutate(func() { s.err = "" })
}

func (s *Store[T, R]) mutate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.broadcastLocked()
}

// Merge rules, applied under the store lock.

func (s *Store[T, R]) replaceItems(items []T) {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = s.clone(item)
	}
	s.items = out
}

func (s *Store[T, R]) setCurrent(v T) {
	c := s.clone(v)
	s.current = &c
}

func (s *Store[T, R]) setResult(r R) {
	s.result = &r
}

// removeItem filters the items present now, not a snapshot taken when the
// delete started, so concurrent deletes never resurrect each other's entries.
func (s *Store[T, R]) removeItem(id string) {
	out := s.items[:0:0]
	for _, item := range s.items {
		if s.id(item) != id {
			out = append(out, item)
		}
	}
	s.items = out
}

// track runs one store operation through pending → fulfilled | rejected.
// A result arriving after ctx is done is dropped so stale views are never
// updated; loading is cleared either way.
func track[T any, R any, V any](ctx context.Context, s *Store[T, R], op, fallback string, call func(context.Context) (V, error), apply func(V)) (V, error) {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.broadcastLocked()
	s.mu.Unlock()

	v, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.broadcastLocked()
	s.inflight--

	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
		s.logger.Debug("dropping late result", zap.String("op", op))
		return v, err
	}
	if err != nil {
		if ctx.Err() == nil {
			s.err = domain.Message(err, fallback)
		}
		s.logger.Debug("operation failed", zap.String("op", op), zap.Error(err))
		return v, err
	}
	if apply != nil {
		apply(v)
	}
	return v, nil
}

func (s *Store[T, R]) snapshotLocked() State[T, R] {
	st := State[T, R]{
		Items:   make([]T, len(s.items)),
		Loading: s.inflight > 0,
		Error:   s.err,
	}
	for i, item := range s.items {
		st.Items[i] = s.clone(item)
	}
	if s.current != nil {
		c := s.clone(*s.current)
		st.Current = &c
	}
	if s.result != nil {
		r := *s.result
		st.Result = &r
	}
	return st
}

func (s *Store[T, R]) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	st := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- st:
		default:
			// Drop the oldest pending snapshot so a slow renderer never blocks the store.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}
