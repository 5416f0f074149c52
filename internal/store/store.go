// Package store persists users, households, recipes and week plans as a
// single document and implements the operations over them.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mealplanner/internal/platform/metrics"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound  = errors.New("not found")
	// ErrForbidden is returned when the acting user lacks access.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when a change would break a household rule.
	ErrConflict  = errors.New("conflict")
	// ErrInvalid is returned for malformed input.
	ErrInvalid   = errors.New("invalid")
)

// Store runs every operation as a load, modify, save transaction against
// its Backend. Transactions are serialised in-process; a single writer per
// document is assumed.
type Store struct {
	mu      sync.Mutex
	backend Backend
	now     func() time.Time
	newID   func(prefix string) string
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps and week boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics reports grocery list rebuilds to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		newID: func(prefix string) string {
			return prefix + "-" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// view loads the document and passes it to fn without saving.
func (s *Store) view(ctx context.Context, fn func(db *Database) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	return fn(db)
}

// update loads the document, applies fn and saves the result. Nothing is
// written when fn returns an error.
func (s *Store) update(ctx context.Context, fn func(db *Database) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(db); err != nil {
		return err
	}
	return s.backend.Save(ctx, db)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
