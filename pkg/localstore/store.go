package localstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/insomniafuel/storefront-core/pkg/config"
	"github.com/insomniafuel/storefront-core/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// snapshot is one durable device-local record, keyed by a fixed name
// such as "cart:guest". The value is raw JSON owned by the caller.
type snapshot struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (snapshot) TableName() string { return "snapshots" }

// Store persists keyed JSON snapshots in a device-local sqlite file.
type Store struct {
	conn *gorm.DB
}

// New opens (and migrates) the snapshot database at the configured path.
func New(ctx context.Context, cfg config.GuestConfig, logg *logger.Logger) (*Store, error) {
	if cfg.StorePath == "" {
		return nil, fmt.Errorf("guest store path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(cfg.StorePath), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}

	if err := conn.AutoMigrate(&snapshot{}); err != nil {
		return nil, fmt.Errorf("migrating snapshot store: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "local snapshot store opened")
	}

	return &Store{conn: conn}, nil
}

// Get returns the raw value stored under key. The second return is
// false when no snapshot exists.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var record snapshot
	err := s.conn.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading snapshot %q: %w", key, err)
	}
	return record.Value, true, nil
}

// Put upserts the raw value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	record := snapshot{Key: key, Value: value}
	err := s.conn.WithContext(ctx).Save(&record).Error
	if err != nil {
		return fmt.Errorf("writing snapshot %q: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot under key; deleting a missing key is not
// an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.conn.WithContext(ctx).Delete(&snapshot{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", key, err)
	}
	return nil
}

// Close shuts down the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
