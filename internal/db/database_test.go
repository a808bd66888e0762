package db

import (
	"testing"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/config"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurePool(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(conn) })

	sqlDB, err := conn.DB()
	require.NoError(t, err)

	ConfigurePool(sqlDB, &config.DatabaseConfig{
		MaxOpenConns:    3,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	})
	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateAndTruncate(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(conn) })

	require.NoError(t, Migrate(conn))
	require.NoError(t, conn.Create(&model.Establishment{Name: "Cafe X"}).Error)
	require.NoError(t, conn.Create(&model.Rating{Username: "alice", EstablishmentName: "Cafe X"}).Error)

	require.NoError(t, TruncateAllTables(conn))

	var count int64
	conn.Model(&model.Establishment{}).Count(&count)
	assert.Zero(t, count)
	conn.Model(&model.Rating{}).Count(&count)
	assert.Zero(t, count)
}
