package domain

import "time"

// SnapshotRecord is the row layout used by the SQL snapshot store.
type SnapshotRecord struct {
	Key       string    `gorm:"primaryKey;size:255"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (SnapshotRecord) TableName() string {
	return "snapshots"
}
