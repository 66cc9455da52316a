package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"maklarsystem/pkg/platform/sentinel"
)

// Memory is an in-process keyed mutex. Idle keys are dropped so the map
// tracks only listings with a holder or waiters.
type Memory struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

// MemoryOption configures a Memory lock.
type MemoryOption func(*Memory)

// WithMemoryWait overrides DefaultWait.
func WithMemoryWait(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.wait = d
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{slots: make(map[string]*slot), wait: DefaultWait}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Acquire blocks until key is free or ctx ends. A timeout while waiting
// returns sentinel.ErrLockHeld.
func (m *Memory) Acquire(ctx context.Context, key string) (Release, error) {
	m.mu.Lock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	m.mu.Unlock()

	waitCtx, cancel := waitContext(ctx, m.wait)
	defer cancel()

	select {
	case s.ch <- struct{}{}:
	case <-waitCtx.Done():
		m.unref(key, s)
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("listing %s: %w", key, sentinel.ErrLockHeld)
		}
		return nil, waitCtx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-s.ch
			m.unref(key, s)
		})
		return nil
	}, nil
}

func (m *Memory) unref(key string, s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
}

// Len reports how many keys are held or awaited.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
