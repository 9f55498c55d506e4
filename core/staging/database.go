package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a new staging database for one scan session.
func Open(cfg Config, log *zap.Logger) (*Store, error) {
	dir := cfg.Dir
	ephemeral := dir == ""
	if ephemeral {
		tmp, err := os.MkdirTemp("", "lair-scanner-")
		if err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+".db")
	dsn := "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"

	// Suppress GORM logging, failures surface as returned errors
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		cleanup(dir, path, ephemeral)
		return nil, fmt.Errorf("failed to open staging database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		cleanup(dir, path, ephemeral)
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// One connection serializes all access to the session database
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		cleanup(dir, path, ephemeral)
		return nil, fmt.Errorf("failed to ping staging database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&entry{}); err != nil {
		_ = sqlDB.Close()
		cleanup(dir, path, ephemeral)
		return nil, fmt.Errorf("failed to migrate staging database: %w", err)
	}

	s := New(db)
	s.path = path
	s.release = func() error {
		err := sqlDB.Close()
		cleanup(dir, path, ephemeral)
		return err
	}

	if log != nil {
		log.Debug("Opened staging store", zap.String("path", path), zap.Bool("ephemeral", ephemeral))
	}

	return s, nil
}

func cleanup(dir, path string, ephemeral bool) {
	if ephemeral {
		_ = os.RemoveAll(dir)
		return
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
}
