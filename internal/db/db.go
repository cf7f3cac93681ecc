// Package db persists the whole dataset as one durable artifact.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"pqsaaay/internal/config"
	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
)

// Artifact loads and saves complete dataset versions. Save must be atomic:
// a later Load observes either the previous or the new version, never a mix.
type Artifact interface {
	Load(ctx context.Context) (*models.Dataset, error)
	Save(ctx context.Context, ds *models.Dataset) error
	Close() error
	Name() string
}

// Open builds the backend selected in cfg.
func Open(cfg *config.Config) (Artifact, error) {
	switch cfg.Store.Backend {
	case "", "file":
		return NewFileArtifact(cfg.Store.DataFile), nil
	case "postgres":
		return NewPostgresArtifact(cfg.Database.URL)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func encode(ds *models.Dataset) ([]byte, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.StorageUnavailable, err, "encode dataset")
	}
	return data, nil
}

// decode parses an artifact and refuses anything that does not pass the
// dataset integrity check.
func decode(data []byte, source string) (*models.Dataset, error) {
	var ds models.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errs.Wrap(errs.CorruptState, err, "parse %s", source)
	}
	ds.Normalize()
	if err := ds.Check(); err != nil {
		return nil, errs.Wrap(errs.CorruptState, err, "verify %s", source)
	}
	return &ds, nil
}
