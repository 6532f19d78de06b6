// Package mutation runs optimistic updates: the new value is visible as soon
// as the mutation starts and is rolled back if the server rejects it.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type Status int

const (
	Idle Status = iota
	Pending
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrPending is returned by Run while an earlier run has not settled
var ErrPending = errors.New("mutation already pending")

// Mutation holds a value that changes through Run
type Mutation[T any] struct {
	mu       sync.Mutex
	status   Status
	value    T
	snapshot T
	err      error
}

func New[T any](initial T) *Mutation[T] {
	return &Mutation[T]{value: initial}
}

func (m *Mutation[T]) Value() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *Mutation[T]) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Mutation[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Run moves Idle → Pending → Succeeded|Failed.
//
// apply computes the optimistic value from the current one and may perform
// local side effects. commit talks to the server and returns the confirmed
// value. If commit fails the snapshot taken before apply is restored and
// rollback is called with it.
func (m *Mutation[T]) Run(
	ctx context.Context,
	apply func(prev T) T,
	commit func(ctx context.Context, optimistic T) (T, error),
	rollback func(prev T),
) error {
	m.mu.Lock()
	if m.status == Pending {
		m.mu.Unlock()
		return ErrPending
	}
	prev := m.value
	m.snapshot = prev
	m.status = Pending
	m.err = nil
	m.mu.Unlock()

	optimistic := prev
	if apply != nil {
		optimistic = apply(prev)
	}
	m.mu.Lock()
	m.value = optimistic
	m.mu.Unlock()

	confirmed, err := commit(ctx, optimistic)

	m.mu.Lock()
	if err != nil {
		m.value = m.snapshot
		m.status = Failed
		m.err = err
		m.mu.Unlock()

		if rollback != nil {
			rollback(prev)
		}
		return fmt.Errorf("mutation failed: %w", err)
	}

	m.value = confirmed
	m.status = Succeeded
	m.mu.Unlock()
	return nil
}
