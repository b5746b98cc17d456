package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/database"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/journal/memory"
	pgjournal "github.com/qc-advancedmedic/nui/internal/journal/postgres"
	redisjournal "github.com/qc-advancedmedic/nui/internal/journal/redis"
	sqlitejournal "github.com/qc-advancedmedic/nui/internal/journal/sqlite"
)

func createJournalBackend(storageCfg config.StorageConfig, resource string) (journal.Backend, error) {
	return newJournalBackend(storageCfg, resource, ZLog)
}

func newJournalBackend(storageCfg config.StorageConfig, resource string, log zerolog.Logger) (journal.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		db, err := database.GetPostgresDB(database.GetPostgresConfig(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info().Msg("Postgres journal backend initialized")
		return pgjournal.New(pgjournal.Dependencies{
			DB:       db,
			Log:      log,
			Resource: resource,
			Version:  CurrentVersion,
		}), nil

	case "sqlite":
		backend, err := sqlitejournal.New(storageCfg.SQLite, resource, CurrentVersion, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		log.Info().Str("dumpPath", storageCfg.SQLite.DumpPath).Msg("SQLite journal backend initialized")
		return backend, nil

	case "redis":
		log.Info().Str("addr", storageCfg.Redis.Addr).Msg("Redis journal backend initialized")
		return redisjournal.New(storageCfg.Redis, log), nil

	case "memory", "":
		log.Info().Str("outputDir", storageCfg.Memory.OutputDir).Msg("Memory journal backend initialized")
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}
