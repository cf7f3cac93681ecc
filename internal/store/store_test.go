package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"pqsaaay/internal/db"
	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
)

// memArtifact is an in-memory Artifact whose saves can be failed or held.
type memArtifact struct {
	mu      sync.Mutex
	data    *models.Dataset
	saves   int
	failErr error
	gate    chan struct{} // when set, Save waits on it
	entered chan struct{} // receives once per Save call
}

func newMemArtifact() *memArtifact {
	return &memArtifact{data: models.NewDataset(), entered: make(chan struct{}, 64)}
}

func (m *memArtifact) Name() string { return "memory" }
func (m *memArtifact) Close() error { return nil }

func (m *memArtifact) Load(context.Context) (*models.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone(), nil
}

func (m *memArtifact) Save(ctx context.Context, ds *models.Dataset) error {
	select {
	case m.entered <- struct{}{}:
	default:
	}
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.data = ds.Clone()
	return nil
}

func (m *memArtifact) hold() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
	return m.gate
}

func (m *memArtifact) failWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *memArtifact) saved() (*models.Dataset, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone(), m.saves
}

func openStore(t *testing.T, a db.Artifact) *Store {
	t.Helper()
	s, err := Open(context.Background(), a, Options{QueueSize: 16, CommitTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func addPost(id string) func(*models.Dataset) (string, error) {
	return func(ds *models.Dataset) (string, error) {
		ds.Posts = append(ds.Posts, models.Post{
			ID: id, Category: models.CategoryCurhat, Content: "isi " + id,
			Reactions: map[string]int{},
		})
		return id, nil
	}
}

func TestSubmitCommitsAndPublishes(t *testing.T) {
	a := newMemArtifact()
	s := openStore(t, a)
	before := s.Snapshot()

	id, err := Submit(context.Background(), s, "addPost", addPost("p1"))
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	after := s.Snapshot()
	assert.Equal(t, before.Version+1, after.Version)
	require.Len(t, after.Data.Posts, 1)
	assert.Empty(t, before.Data.Posts, "published snapshots are never mutated")

	saved, n := a.saved()
	assert.Equal(t, 1, n)
	assert.Len(t, saved.Posts, 1)
}

func TestOperationErrorLeavesStateUntouched(t *testing.T) {
	a := newMemArtifact()
	s := openStore(t, a)

	_, err := Submit(context.Background(), s, "bad", func(ds *models.Dataset) (int, error) {
		ds.Posts = append(ds.Posts, models.Post{ID: "ghost"})
		return 0, errs.NotFoundf("nope")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	assert.Zero(t, s.Snapshot().Version)
	assert.Empty(t, s.Snapshot().Data.Posts)
	_, n := a.saved()
	assert.Zero(t, n)
}

func TestSaveFailureIsCommitFailed(t *testing.T) {
	a := newMemArtifact()
	s := openStore(t, a)
	_, err := Submit(context.Background(), s, "addPost", addPost("p1"))
	require.NoError(t, err)

	a.failWith(errs.Wrap(errs.StorageUnavailable, errors.New("disk full"), "write"))
	_, err = Submit(context.Background(), s, "addPost", addPost("p2"))
	require.Error(t, err)
	assert.Equal(t, errs.CommitFailed, errs.CodeOf(err))
	assert.True(t, errors.Is(err, errs.ErrStorageUnavailable))

	snap := s.Snapshot()
	assert.EqualValues(t, 1, snap.Version)
	require.Len(t, snap.Data.Posts, 1)
	assert.Equal(t, "p1", snap.Data.Posts[0].ID)

	a.failWith(nil)
	_, err = Submit(context.Background(), s, "addPost", addPost("p3"))
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Data.Posts, 2)
}

func TestPanickingOperationDoesNotStopWriter(t *testing.T) {
	s := openStore(t, newMemArtifact())

	_, err := Submit(context.Background(), s, "boom", func(ds *models.Dataset) (int, error) {
		panic("boom")
	})
	require.Error(t, err)

	_, err = Submit(context.Background(), s, "addPost", addPost("p1"))
	assert.NoError(t, err)
}

func TestOperationsRunInSubmissionOrder(t *testing.T) {
	a := newMemArtifact()
	s := openStore(t, a)
	gate := a.hold()

	var mu sync.Mutex
	var order []string
	record := func(id string) func(*models.Dataset) (string, error) {
		return func(ds *models.Dataset) (string, error) {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			return addPost(id)(ds)
		}
	}

	var wg sync.WaitGroup
	submit := func(id string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Submit(context.Background(), s, "addPost", record(id))
			assert.NoError(t, err)
		}()
	}

	submit("first")
	<-a.entered // the writer is now holding "first" in Save
	ids := []string{"a", "b", "c", "d", "e"}
	for i, id := range ids {
		submit(id)
		require.Eventually(t, func() bool { return len(s.queue) == i+1 }, time.Second, time.Millisecond)
	}
	close(gate)
	wg.Wait()

	assert.Equal(t, append([]string{"first"}, ids...), order)
	var got []string
	for _, p := range s.Snapshot().Data.Posts {
		got = append(got, p.ID)
	}
	assert.Equal(t, order, got)
}

func TestQueuedCallerCanGiveUp(t *testing.T) {
	a := newMemArtifact()
	s := openStore(t, a)
	gate := a.hold()

	go func() { _, _ = Submit(context.Background(), s, "addPost", addPost("p1")) }()
	<-a.entered

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{}, 1)
	errc := make(chan error, 1)
	go func() {
		_, err := Submit(ctx, s, "late", func(ds *models.Dataset) (int, error) {
			ran <- struct{}{}
			return 0, nil
		})
		errc <- err
	}()
	require.Eventually(t, func() bool { return len(s.queue) == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(gate)
	_, err := Submit(context.Background(), s, "addPost", addPost("p2"))
	require.NoError(t, err)

	select {
	case <-ran:
		t.Fatal("abandoned operation must not run")
	default:
	}
	assert.EqualValues(t, 2, s.Snapshot().Version)
}

func TestStartedOperationRunsToCompletion(t *testing.T) {
	a := newMemArtifact()
	s := openStore(t, a)
	gate := a.hold()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := Submit(ctx, s, "addPost", addPost("p1"))
		errc <- err
	}()
	<-a.entered
	cancel()
	close(gate)

	assert.NoError(t, <-errc)
	assert.Len(t, s.Snapshot().Data.Posts, 1)
}

func TestConcurrentCountersAreNeverLost(t *testing.T) {
	s := openStore(t, newMemArtifact())
	_, err := Submit(context.Background(), s, "addPost", addPost("p1"))
	require.NoError(t, err)

	const n = 100
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := Submit(context.Background(), s, "react", func(ds *models.Dataset) (int, error) {
				models.ApplyReaction(ds.Posts[0].Reactions, "❤️", true)
				return ds.Posts[0].Reactions["❤️"], nil
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	snap := s.Snapshot()
	assert.Equal(t, n, snap.Data.Posts[0].Reactions["❤️"])
	assert.EqualValues(t, n+1, snap.Version)
}

func TestSubmitAfterClose(t *testing.T) {
	s, err := Open(context.Background(), newMemArtifact(), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = Submit(context.Background(), s, "addPost", addPost("p1"))
	assert.True(t, errors.Is(err, errs.ErrStorageUnavailable), "got %v", err)
}

func TestOpenWithFileArtifactPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")

	s, err := Open(context.Background(), db.NewFileArtifact(path), Options{})
	require.NoError(t, err)
	_, err = Submit(context.Background(), s, "addPost", addPost("p1"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(context.Background(), db.NewFileArtifact(path), Options{})
	require.NoError(t, err)
	defer reopened.Close()
	require.Len(t, reopened.Snapshot().Data.Posts, 1)
	assert.Equal(t, "p1", reopened.Snapshot().Data.Posts[0].ID)
}
