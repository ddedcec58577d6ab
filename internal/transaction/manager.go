// Package transaction tracks undo steps for multi-file installs so a
// failure midway leaves the game directory as it was found.
package transaction

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// RollbackFunc reverses one completed step.
type RollbackFunc func() error

type operation struct {
	name string
	fn   RollbackFunc
}

// Manager holds a stack of rollback operations for one install.
type Manager struct {
	mu     sync.Mutex
	ops    []operation
	logger *zerolog.Logger
}

// NewManager creates an empty transaction manager.
func NewManager(logger *zerolog.Logger) *Manager {
	return &Manager{logger: logger}
}

// Add registers the undo step for a completed operation.
func (m *Manager) Add(name string, fn RollbackFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, operation{name, fn})
}

// Rollback undoes all registered operations in reverse order. Failures
// are collected rather than aborting, so every remaining step still runs.
func (m *Manager) Rollback() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.ops) == 0 {
		return nil
	}

	var errs []error
	for i := len(m.ops) - 1; i >= 0; i-- {
		op := m.ops[i]
		if m.logger != nil {
			m.logger.Debug().Str("operation", op.name).Msg("rolling back")
		}
		if err := op.fn(); err != nil {
			errs = append(errs, fmt.Errorf("rollback %s: %w", op.name, err))
			if m.logger != nil {
				m.logger.Error().Err(err).Str("operation", op.name).Msg("rollback failed")
			}
		}
	}
	m.ops = nil

	return errors.Join(errs...)
}

// Commit discards the rollback stack, confirming the install.
func (m *Manager) Commit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}
