package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qc-advancedmedic/nui/internal/model"
)

func TestPostgresConfig_DSN(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "db")
	viper.Set("db.port", "5433")
	viper.Set("db.username", "medic")
	viper.Set("db.password", "secret")
	viper.Set("db.database", "journal")

	assert.Equal(t,
		"host=db port=5433 user=medic password=secret dbname=journal sslmode=disable",
		GetPostgresConfig().DSN())
}

func TestSetup_InMemory(t *testing.T) {
	db, err := GetSqliteDB("", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, Setup(db, "qc-advancedmedic", "test", zerolog.Nop()))
	// second run keeps the single info row
	require.NoError(t, Setup(db, "qc-advancedmedic", "test", zerolog.Nop()))

	var infos []model.BridgeInfo
	require.NoError(t, db.Find(&infos).Error)
	require.Len(t, infos, 1)
	assert.Equal(t, "qc-advancedmedic", infos[0].Resource)
	assert.True(t, db.Migrator().HasTable(&model.JournalEntry{}))
}

func TestGetSqliteDB_PrivateMemory(t *testing.T) {
	a, err := GetSqliteDB("", zerolog.Nop())
	require.NoError(t, err)
	b, err := GetSqliteDB("", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, Setup(a, "a", "test", zerolog.Nop()))
	assert.False(t, b.Migrator().HasTable(&model.BridgeInfo{}))
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDB("", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Setup(db, "qc-advancedmedic", "test", zerolog.Nop()))

	path := filepath.Join(t.TempDir(), "dumps", "journal.db")
	require.NoError(t, DumpMemoryDBToDisk(db, path))
	// dumping again replaces the file
	require.NoError(t, DumpMemoryDBToDisk(db, path))

	disk, err := GetSqliteDB(path, zerolog.Nop())
	require.NoError(t, err)
	var count int64
	require.NoError(t, disk.Model(&model.BridgeInfo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpMemoryDBToDisk_Errors(t *testing.T) {
	db, err := GetSqliteDB("", zerolog.Nop())
	require.NoError(t, err)

	assert.Error(t, DumpMemoryDBToDisk(db, ""))
	assert.Error(t, DumpMemoryDBToDisk(db, "/tmp/it's.db"))
}
