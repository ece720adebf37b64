package migrations

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// MigrationsTable is migrate's version table.
const MigrationsTable = "billiards_schema_migrations"

// RunMigrations applies the migrations in dir and returns the schema version.
// A database that already has the ledger tables but no version table is
// baselined to the newest migration on disk first. It uses its own
// connection, closed on return.
func RunMigrations(databaseURL, dir string) (uint, error) {
	if databaseURL == "" {
		return 0, errors.New("database URL is empty")
	}

	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to open DB: %w", err)
	}
	driver, err := pg.WithInstance(db.DB, &pg.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		db.Close()
		return 0, fmt.Errorf("failed to create migrate driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		driver.Close()
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if baseline, err := needsBaseline(db); err != nil {
		log.Printf("[MIGRATE] Baseline check failed: %v", err)
	} else if baseline {
		if latest := findLatestMigrationVersion(dir); latest > 0 {
			log.Printf("[MIGRATE] Baseline DB to version %d (existing schema present)", latest)
			if err := m.Force(latest); err != nil {
				return 0, fmt.Errorf("baseline to version %d: %w", latest, err)
			}
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	log.Printf("[MIGRATE] Schema at version %d", version)
	return version, nil
}

func needsBaseline(db *sqlx.DB) (bool, error) {
	const tableExists = `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`

	var sessions, versions bool
	if err := db.Get(&sessions, tableExists, "billiards_sessions"); err != nil {
		return false, err
	}
	if err := db.Get(&versions, tableExists, MigrationsTable); err != nil {
		return false, err
	}
	return sessions && !versions, nil
}

// findLatestMigrationVersion returns the highest numeric prefix (000012_...)
// among the files in dir, or 0.
func findLatestMigrationVersion(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	latest := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			continue
		}
		if v, err := strconv.Atoi(prefix); err == nil && v > latest {
			latest = v
		}
	}
	return latest
}
