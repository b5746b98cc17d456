package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qc-advancedmedic/nui/internal/model"
)

// PostgresConfig holds the connection settings of the postgres journal.
type PostgresConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// GetPostgresConfig reads the db.* settings.
func GetPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// DSN returns the libpq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// GetPostgresDB returns a connection to the Postgres database and checks it.
func GetPostgresDB(cfg PostgresConfig, log zerolog.Logger) (*gorm.DB, error) {
	log.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connecting to Postgres DB")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	log.Info().Msg("Connected to database")
	return db, nil
}

// GetSqliteDB returns a connection to a SQLite database.
// If path is empty, uses a private in-memory database.
func GetSqliteDB(path string, log zerolog.Logger) (*gorm.DB, error) {
	dsn := path
	if path == "" {
		dsn = fmt.Sprintf("file:medic_%s?mode=memory&cache=shared", uuid.NewString())
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if path == "" {
		// the database lives only as long as a connection to it does
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql interface: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		log.Info().Msg("Using local SQLite DB in memory with periodic disk dump")
	} else {
		log.Info().Str("path", path).Msg("Using local SQLite DB")
	}

	// set PRAGMAS
	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA cache_size = -8000;",
		"PRAGMA temp_store = MEMORY;",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}

	return db, nil
}

// Setup migrates the journal tables and records the owning bridge once.
func Setup(db *gorm.DB, resource, version string, log zerolog.Logger) error {
	if !db.Migrator().HasTable(&model.BridgeInfo{}) {
		if err := db.AutoMigrate(&model.BridgeInfo{}); err != nil {
			return fmt.Errorf("failed to create bridge_infos table: %w", err)
		}
		if err := db.Create(&model.BridgeInfo{
			Resource: resource,
			Version:  version,
		}).Error; err != nil {
			return fmt.Errorf("failed to create bridge_infos entry: %w", err)
		}
	}

	log.Info().Msg("Migrating schema")
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info().Msg("Database setup complete")
	return nil
}

// DumpMemoryDBToDisk vacuums the in-memory database to a disk file.
func DumpMemoryDBToDisk(db *gorm.DB, sqliteFilePath string) error {
	if sqliteFilePath == "" {
		return fmt.Errorf("sqlite file path not set")
	}
	if strings.ContainsRune(sqliteFilePath, '\'') {
		return fmt.Errorf("sqlite file path %q contains a quote", sqliteFilePath)
	}

	if err := os.MkdirAll(filepath.Dir(sqliteFilePath), 0755); err != nil {
		return fmt.Errorf("error creating dump directory: %s", err)
	}

	// remove existing file if it exists
	if exists, err := os.Stat(sqliteFilePath); err == nil && exists != nil {
		if err := os.Remove(sqliteFilePath); err != nil {
			return fmt.Errorf("error removing existing DB file: %s", err)
		}
	}

	err := db.Exec("VACUUM INTO 'file:" + sqliteFilePath + "';").Error
	if err != nil {
		return fmt.Errorf("error dumping memory DB to disk: %s", err)
	}

	return nil
}
