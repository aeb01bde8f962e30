package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"wager-ledger/internal/config"
	"wager-ledger/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding *.sql migrations")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New("wager-migrate", cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Database.Driver != "postgres" {
		log.Fatal("raw SQL migrations target postgres; sqlite uses AutoMigrate", zap.String("driver", cfg.Database.Driver))
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	applied, err := apply(db, *dir, log)
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("migrations complete", zap.Int("applied", applied))
}

// apply runs every migration in dir that is not yet recorded in
// schema_migrations, in file name order, each in its own transaction.
func apply(db *sql.DB, dir string, log *zap.Logger) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return 0, err
	}
	sort.Strings(files)

	applied := 0
	for _, file := range files {
		name := filepath.Base(file)

		var exists bool
		if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&exists); err != nil {
			return applied, fmt.Errorf("failed to check %s: %w", name, err)
		}
		if exists {
			continue
		}

		migrationSQL, err := os.ReadFile(file)
		if err != nil {
			return applied, fmt.Errorf("failed to read %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return applied, err
		}
		if _, err := tx.Exec(string(migrationSQL)); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to execute %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit %s: %w", name, err)
		}

		log.Info("applied migration", zap.String("name", name))
		applied++
	}
	return applied, nil
}
