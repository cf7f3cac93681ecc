// Package store owns the in-memory dataset and serializes every mutation
// through a single writer that persists each new version before publishing it.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pqsaaay/internal/db"
	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
)

// Snapshot is one committed version of the dataset. Data is shared by every
// reader of the version and must not be modified.
type Snapshot struct {
	Version     uint64
	CommittedAt time.Time
	Data        *models.Dataset
}

type Options struct {
	QueueSize     int
	CommitTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 128
	}
	if o.CommitTimeout <= 0 {
		o.CommitTimeout = 5 * time.Second
	}
	return o
}

// request states
const (
	pending int32 = iota
	running
	abandoned
)

type result struct {
	value any
	err   error
}

type request struct {
	name  string
	op    func(*models.Dataset) (any, error)
	state atomic.Int32
	done  chan result
}

// Store is the only component allowed to replace the cached dataset or write
// the artifact.
type Store struct {
	artifact db.Artifact
	opts     Options
	current  atomic.Pointer[Snapshot]

	queue    chan *request
	mu       sync.RWMutex // guards closed against sends on queue
	closed   bool
	finished chan struct{}
}

// Open loads the last committed dataset and starts the writer.
func Open(ctx context.Context, artifact db.Artifact, opts Options) (*Store, error) {
	ds, err := artifact.Load(ctx)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	s := &Store{
		artifact: artifact,
		opts:     opts,
		queue:    make(chan *request, opts.QueueSize),
		finished: make(chan struct{}),
	}
	s.current.Store(&Snapshot{Version: 0, CommittedAt: time.Now().UTC(), Data: ds})

	go s.worker()

	slog.Info("Store opened",
		"artifact", artifact.Name(),
		"posts", len(ds.Posts),
		"comments", len(ds.Comments),
		"votings", len(ds.Votings))
	return s, nil
}

// Snapshot returns the latest committed version without blocking.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *Store) Backend() string { return s.artifact.Name() }

// Submit queues op and waits for its outcome. op receives a private copy of
// the current dataset and may modify it freely; the copy is committed only if
// op returns no error. The returned value must not alias the dataset.
//
// The caller may give up through ctx while op is still queued, in which case
// op never runs. Once the writer has started op it always runs to completion
// and Submit reports the real outcome.
func Submit[T any](ctx context.Context, s *Store, name string, op func(*models.Dataset) (T, error)) (T, error) {
	var zero T
	req := &request{
		name: name,
		op: func(ds *models.Dataset) (any, error) {
			return op(ds)
		},
		done: make(chan result, 1),
	}

	if err := s.enqueue(ctx, req); err != nil {
		return zero, err
	}

	select {
	case res := <-req.done:
		return unpack[T](res)
	case <-ctx.Done():
		if req.state.CompareAndSwap(pending, abandoned) {
			return zero, ctx.Err()
		}
		// Already running: wait for commit or failure.
		return unpack[T](<-req.done)
	}
}

func unpack[T any](res result) (T, error) {
	if res.err != nil {
		var zero T
		return zero, res.err
	}
	v, _ := res.value.(T)
	return v, nil
}

func (s *Store) enqueue(ctx context.Context, req *request) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errs.Wrap(errs.StorageUnavailable, errors.New("store closed"), "submit %s", req.name)
	}
	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) worker() {
	defer close(s.finished)
	for req := range s.queue {
		if !req.state.CompareAndSwap(pending, running) {
			slog.Debug("Skipping abandoned operation", "op", req.name)
			continue
		}
		value, err := s.apply(req)
		req.done <- result{value: value, err: err}
	}
}

// apply runs one operation against a clone of the current version and
// publishes the clone only after it has been saved.
func (s *Store) apply(req *request) (any, error) {
	start := time.Now()
	cur := s.current.Load()
	next := cur.Data.Clone()

	value, err := run(req, next)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.CommitTimeout)
	defer cancel()
	if err := s.artifact.Save(ctx, next); err != nil {
		slog.Error("Commit failed",
			"op", req.name,
			"version", cur.Version,
			"error", err)
		return nil, errs.Wrap(errs.CommitFailed, err, "commit %s", req.name)
	}

	s.current.Store(&Snapshot{
		Version:     cur.Version + 1,
		CommittedAt: time.Now().UTC(),
		Data:        next,
	})
	slog.Debug("Committed",
		"op", req.name,
		"version", cur.Version+1,
		"took", time.Since(start))
	return value, nil
}

// run keeps a panicking operation from taking the writer down with it.
func run(req *request, ds *models.Dataset) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Operation panicked", "op", req.name, "panic", r)
			err = fmt.Errorf("operation %s panicked: %v", req.name, r)
		}
	}()
	return req.op(ds)
}

// Close stops accepting operations, lets queued ones finish and closes the
// artifact.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.finished
	return s.artifact.Close()
}
