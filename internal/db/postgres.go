package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
)

const snapshotRowID = 1

// PostgresArtifact keeps the dataset document in a single table row. The
// upsert is one statement inside one transaction, so readers never see a
// partially written document.
type PostgresArtifact struct {
	db *gorm.DB
}

func NewPostgresArtifact(dsn string) (*PostgresArtifact, error) {
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=pqsaaay port=5432 sslmode=disable TimeZone=UTC"
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errs.Wrap(errs.StorageUnavailable, err, "connect to database")
	}
	slog.Info("Database connection established")

	if err := gdb.AutoMigrate(&models.DatasetSnapshot{}); err != nil {
		return nil, errs.Wrap(errs.StorageUnavailable, err, "migrate dataset_snapshots")
	}
	return &PostgresArtifact{db: gdb}, nil
}

func (a *PostgresArtifact) Name() string { return "postgres:" + models.DatasetSnapshot{}.TableName() }

func (a *PostgresArtifact) Load(ctx context.Context) (*models.Dataset, error) {
	var snap models.DatasetSnapshot
	err := a.db.WithContext(ctx).First(&snap, snapshotRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewDataset(), nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.StorageUnavailable, err, "read dataset snapshot")
	}
	return decode([]byte(snap.Payload), "dataset snapshot")
}

func (a *PostgresArtifact) Save(ctx context.Context, ds *models.Dataset) error {
	data, err := encode(ds)
	if err != nil {
		return err
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap := models.DatasetSnapshot{ID: snapshotRowID, Payload: string(data)}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).Create(&snap).Error
	})
	if err != nil {
		return errs.Wrap(errs.StorageUnavailable, err, "write dataset snapshot")
	}
	return nil
}

func (a *PostgresArtifact) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
