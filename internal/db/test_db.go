package db

import (
	"fmt"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens a migrated in-memory SQLite database.
//
// Each ":memory:" connection is its own database, so the pool is held at one
// connection. That also serializes transactions much like row locks would.
func SetupTestDB() (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(model.All()...); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return conn, nil
}

// CleanupTestDB closes a database opened by SetupTestDB.
func CleanupTestDB(conn *gorm.DB) {
	if conn == nil {
		return
	}
	sqlDB, err := conn.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		logger.Warn("Closing test database failed", map[string]interface{}{"error": err.Error()})
	}
}

// TruncateAllTables empties every model table, children first.
func TruncateAllTables(conn *gorm.DB) error {
	models := model.All()
	wipe := conn.Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(models) - 1; i >= 0; i-- {
		if err := wipe.Unscoped().Delete(models[i]).Error; err != nil {
			return fmt.Errorf("truncate %T: %w", models[i], err)
		}
	}
	return nil
}
