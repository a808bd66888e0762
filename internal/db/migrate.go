package db

import (
	"fmt"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"gorm.io/gorm"
)

// Migrate brings the schema up to the current models one table at a time.
// Against a legacy schema AutoMigrate only adds what is missing, such as the
// establishment_id link columns, and never drops existing columns.
func Migrate(conn *gorm.DB) error {
	start := time.Now()
	migrator := conn.Migrator()
	created := 0

	for _, m := range model.All() {
		existed := migrator.HasTable(m)
		if err := migrator.AutoMigrate(m); err != nil {
			logger.Error("Migration failed", err, map[string]interface{}{"model": fmt.Sprintf("%T", m)})
			return fmt.Errorf("migrate %T: %w", m, err)
		}
		if !existed {
			created++
		}
	}

	logger.Info("Database migrations completed", map[string]interface{}{
		"models":         len(model.All()),
		"tables_created": created,
		"duration_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}
