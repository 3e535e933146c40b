package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StateEntry is the gorm model backing the sqlite driver.
type StateEntry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of gorm pluralization.
func (StateEntry) TableName() string { return "client_state" }

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLite builds a sqlite-backed store on the given gorm handle, migrating
// the schema on first use.
func NewSQLite(db *gorm.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite store requires database handle")
	}
	if err := db.AutoMigrate(&StateEntry{}); err != nil {
		return nil, fmt.Errorf("migrate client_state: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, error) {
	var entry StateEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return entry.Value, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	entry := StateEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("key = ?", key).Delete(&StateEntry{}).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
}

func (s *sqliteStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&StateEntry{}).Error
}

func (s *sqliteStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
