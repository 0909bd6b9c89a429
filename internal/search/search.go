// Package search indexes content items with bleve. Index access is
// serialized through a single worker goroutine that answers requests in
// the order they were queued.
package search

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrDisposed is returned by every call made after Dispose.
var ErrDisposed = errors.New("search store disposed")

const requestQueueSize = 256

// Result is a search hit with the metadata it was added with.
type Result[T any] struct {
	Meta  T       `json:"meta"`
	Score float64 `json:"score"`
}

// Document is an indexed entry.
type Document[T any] struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Meta  T      `json:"meta"`
}

// Snapshot is the serializable state of a store.
type Snapshot[T any] struct {
	Documents []Document[T] `json:"documents"`
}

// Indexable is an item that can be added to the index. ok is false for
// items that are not searchable.
type Indexable interface {
	SearchEntry() (title, body, id string, ok bool)
}

// Option configures a Store.
type Option func(*settings)

type settings struct {
	logger     *slog.Logger
	background bool
	metrics    *Metrics
}

// WithLogger sets the logger used for failures of queued requests.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithBackground enables or disables the worker goroutine. Without it every
// call runs on the caller's goroutine under a lock.
func WithBackground(enabled bool) Option {
	return func(s *settings) {
		s.background = enabled
	}
}

// WithMetrics records index size and query statistics.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// Store is a full text index over documents carrying metadata of type T.
type Store[T any] struct {
	logger  *slog.Logger
	metrics *Metrics

	requests chan func(*index[T])
	stopped  chan struct{}

	mu       sync.Mutex
	disposed bool
	local    *index[T]
}

// New creates a store and starts its worker.
func New[T any](opts ...Option) (*Store[T], error) {
	cfg := settings{logger: slog.Default(), background: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	ix, err := newIndex[T]()
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	s := &Store[T]{
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
	if !cfg.background {
		s.local = ix
		return s, nil
	}

	s.requests = make(chan func(*index[T]), requestQueueSize)
	s.stopped = make(chan struct{})
	go s.worker(ix)
	return s, nil
}

func (s *Store[T]) worker(ix *index[T]) {
	defer close(s.stopped)
	for req := range s.requests {
		req(ix)
	}
	if err := ix.close(); err != nil {
		s.logger.Warn("failed to close search index", "error", err)
	}
}

// enqueue hands fn to the worker, or runs it right away without one.
func (s *Store[T]) enqueue(fn func(*index[T])) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}
	if s.local != nil {
		fn(s.local)
		return nil
	}
	s.requests <- fn
	return nil
}

// call runs fn and waits for it to finish.
func (s *Store[T]) call(fn func(*index[T])) error {
	done := make(chan struct{})
	err := s.enqueue(func(ix *index[T]) {
		defer close(done)
		fn(ix)
	})
	if err != nil {
		return err
	}
	<-done
	return nil
}

// Add queues a document. It becomes searchable after Done.
func (s *Store[T]) Add(title, body string, meta T) error {
	return s.enqueue(func(ix *index[T]) {
		ix.add(Document[T]{Title: title, Body: body, Meta: meta})
	})
}

// Done indexes the documents added so far.
func (s *Store[T]) Done() error {
	return s.enqueue(func(ix *index[T]) {
		if err := ix.flush(); err != nil {
			s.logger.Error("failed to index documents", "error", err)
		}
		s.metrics.setDocuments(ix.count())
	})
}

// Search returns the documents matching q, best first. Each term of q
// matches anywhere inside title or body words, title matches weigh more.
// Terms of a single character are ignored.
func (s *Store[T]) Search(q string) ([]Result[T], error) {
	var (
		results []Result[T]
		err     error
	)
	start := time.Now()
	if callErr := s.call(func(ix *index[T]) {
		results, err = ix.search(q)
	}); callErr != nil {
		return nil, callErr
	}
	s.metrics.observeQuery(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	return results, nil
}

// Export returns the documents of the store.
func (s *Store[T]) Export() (Snapshot[T], error) {
	var snap Snapshot[T]
	err := s.call(func(ix *index[T]) {
		snap.Documents = append([]Document[T](nil), ix.docs...)
	})
	return snap, err
}

// Load replaces the index with the documents of snap.
func (s *Store[T]) Load(snap Snapshot[T]) error {
	var err error
	if callErr := s.call(func(ix *index[T]) {
		err = ix.reset(snap.Documents)
		s.metrics.setDocuments(ix.count())
	}); callErr != nil {
		return callErr
	}
	if err != nil {
		return fmt.Errorf("failed to load search snapshot: %w", err)
	}
	return nil
}

// Dispose stops the worker once the queued requests are answered.
func (s *Store[T]) Dispose() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	s.disposed = true
	if s.local != nil {
		err := s.local.close()
		s.mu.Unlock()
		return err
	}
	close(s.requests)
	s.mu.Unlock()

	<-s.stopped
	return nil
}

// IndexItems adds every searchable item with its id as metadata, then
// finishes the index.
func IndexItems[I Indexable](s *Store[string], items []I) error {
	for _, item := range items {
		title, body, id, ok := item.SearchEntry()
		if !ok {
			continue
		}
		if err := s.Add(title, body, id); err != nil {
			return err
		}
	}
	return s.Done()
}
