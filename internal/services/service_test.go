package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pqsaaay/internal/db"
	"pqsaaay/internal/store"
)

func newTestServices(t *testing.T) (*Services, *store.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.json")
	st, err := store.Open(context.Background(), db.NewFileArtifact(path), store.Options{QueueSize: 32})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st), st
}

// freezeNow pins the service clock to at for the rest of the test.
func freezeNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func text(n int) string {
	return strings.Repeat("a", n)
}
