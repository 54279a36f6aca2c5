package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/souldraw/go/internal/dbconfig"
	"github.com/mcdev12/souldraw/go/internal/souldraw"
	"github.com/mcdev12/souldraw/go/internal/sqlutil"
)

// setupDatabase opens the configured store and makes sure the schema exists.
func setupDatabase(ctx context.Context, dbCfg dbconfig.Config) (*sql.DB, error) {
	database, err := sql.Open(dbCfg.DriverName(), dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	if dbCfg.Driver == sqlutil.SQLite {
		database.SetMaxOpenConns(1)
	}

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := souldraw.Migrate(ctx, database, dbCfg.Driver); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("database", dbCfg.String()).Msg("connected to database")
	return database, nil
}

// migratePostgres applies the schema through a pgx pool.
func migratePostgres(ctx context.Context, dbCfg dbconfig.Config) error {
	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range souldraw.SchemaStatements(sqlutil.Postgres) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
