package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ByteBlast1/KanFlow/internal/domain"
)

// gormStore keeps snapshots in the snapshots table, one row per key.
type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) SnapshotStore {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec domain.SnapshotRecord
	result := s.db.WithContext(ctx).First(&rec, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select snapshot %s: %w", key, result.Error)
	}
	return rec.Value, nil
}

// Set upserts the row so the latest writer always wins.
func (s *gormStore) Set(ctx context.Context, key string, value []byte) error {
	rec := domain.SnapshotRecord{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("upsert snapshot %s: %w", key, result.Error)
	}
	return nil
}

func (s *gormStore) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Delete(&domain.SnapshotRecord{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, result.Error)
	}
	return nil
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close is a no-op: the pool belongs to database.Service.
func (s *gormStore) Close() error { return nil }
