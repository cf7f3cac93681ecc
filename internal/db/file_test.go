package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pqsaaay/internal/config"
	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
)

func sampleDataset() *models.Dataset {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ds := models.NewDataset()
	ds.Posts = append(ds.Posts, models.Post{
		ID: "p1", Category: models.CategoryCurhat, Content: "Saya merasa sedih hari ini...",
		Author: "Ani", Timestamp: now, Reactions: map[string]int{"😢": 3}, CommentsCount: 1,
	})
	ds.Comments = append(ds.Comments, models.Comment{
		ID: "c1", PostID: "p1", Content: "Semangat ya!", Author: models.AnonymousName,
		IsAnonymous: true, Timestamp: now.Add(time.Minute), Reactions: map[string]int{},
	})
	ds.Votings = append(ds.Votings, models.Voting{
		ID: "v1", Title: "Setuju jam kerja baru?", Type: models.VotingLikert,
		Options: models.OptionsFor(models.VotingLikert), Responses: []models.VotingResponse{},
		CreatedAt: now, IsActive: true,
	})
	return ds
}

func TestFileLoadMissingReturnsEmptyDataset(t *testing.T) {
	a := NewFileArtifact(filepath.Join(t.TempDir(), "data", "database.json"))

	ds, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds.Posts)
	assert.Empty(t, ds.Comments)
	assert.Empty(t, ds.Votings)
	assert.NotNil(t, ds.Posts)
}

func TestFileSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "database.json")
	a := NewFileArtifact(path)

	require.NoError(t, a.Save(ctx, sampleDataset()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleDataset(), loaded)

	// save(load()) must not change the artifact content.
	require.NoError(t, a.Save(ctx, loaded))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	a := NewFileArtifact(filepath.Join(dir, "database.json"))

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Save(context.Background(), sampleDataset()))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "database.json", entries[0].Name())
}

func TestFileLoadCorruptArtifact(t *testing.T) {
	cases := map[string]string{
		"truncated json": `{"posts": [{"id": "p1"`,
		"empty file":     ``,
		"broken counter": `{"posts":[{"id":"p1","category":"curhat","content":"x","author":"a","timestamp":"2025-03-01T10:00:00Z","commentsCount":4}],"comments":[],"votings":[]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "database.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := NewFileArtifact(path).Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrCorruptState), "got %v", err)
		})
	}
}

func TestFileLoadNormalizesLegacyNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"posts":null,"comments":null}`), 0o644))

	ds, err := NewFileArtifact(path).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ds.Posts)
	assert.NotNil(t, ds.Votings)
}

func TestFileUnavailableMedium(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	a := NewFileArtifact(filepath.Join(blocker, "database.json"))
	err := a.Save(context.Background(), sampleDataset())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrStorageUnavailable), "got %v", err)

	// A directory where the artifact should be cannot be read either.
	_, err = NewFileArtifact(dir).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrStorageUnavailable), "got %v", err)
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.DataFile = filepath.Join(t.TempDir(), "database.json")

	a, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileArtifact{}, a)

	cfg.Store.Backend = "s3"
	_, err = Open(cfg)
	assert.Error(t, err)
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, shouldRetry(nil))
	assert.False(t, shouldRetry(os.ErrNotExist))
	assert.False(t, shouldRetry(context.Canceled))
	assert.True(t, shouldRetry(errors.New("resource temporarily unavailable")))
}
