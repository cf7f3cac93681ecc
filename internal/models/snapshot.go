package models

import (
	"time"
)

// DatasetSnapshot is the single row the Postgres backend keeps the whole
// dataset document in.
type DatasetSnapshot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Payload   string    `gorm:"type:text;not null" json:"payload"` // JSON encoded Dataset
	UpdatedAt time.Time `json:"updated_at"`
}

func (DatasetSnapshot) TableName() string { return "dataset_snapshots" }
