package db

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	retry "github.com/sethvargo/go-retry"

	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
)

// FileArtifact keeps the dataset in one JSON file and replaces it with
// write-new-then-rename on every save.
type FileArtifact struct {
	path       string
	maxRetries uint64
	backoff    time.Duration
}

func NewFileArtifact(path string) *FileArtifact {
	return &FileArtifact{
		path:       path,
		maxRetries: 3,
		backoff:    20 * time.Millisecond,
	}
}

func (a *FileArtifact) Name() string { return "file:" + a.path }

func (a *FileArtifact) Close() error { return nil }

func (a *FileArtifact) Load(ctx context.Context) (*models.Dataset, error) {
	var data []byte
	err := a.retry(ctx, func() error {
		var err error
		data, err = os.ReadFile(a.path)
		return err
	})
	if errors.Is(err, os.ErrNotExist) {
		return models.NewDataset(), nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.StorageUnavailable, err, "read %s", a.path)
	}
	return decode(data, a.path)
}

func (a *FileArtifact) Save(ctx context.Context, ds *models.Dataset) error {
	data, err := encode(ds)
	if err != nil {
		return err
	}
	if err := a.retry(ctx, func() error { return a.replace(data) }); err != nil {
		return errs.Wrap(errs.StorageUnavailable, err, "write %s", a.path)
	}
	return nil
}

// replace writes data to a fresh temp file next to the artifact, flushes it
// and renames it into place. The temp file is removed on any failure.
func (a *FileArtifact) replace(data []byte) (err error) {
	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(a.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp, a.path); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

// syncDir flushes the rename itself. Not every platform supports fsync on a
// directory, so failures are only logged.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		slog.Debug("Directory sync skipped", "dir", dir, "error", err)
	}
}

func (a *FileArtifact) retry(ctx context.Context, task func() error) error {
	b := retry.WithMaxRetries(a.maxRetries, retry.NewFibonacci(a.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := task()
		if shouldRetry(err) {
			slog.Warn("Transient artifact I/O error, retrying", "path", a.path, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}
