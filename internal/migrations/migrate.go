package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const versionTable = "schema_migrations_migrate"

var versionPrefix = regexp.MustCompile(`^0*([0-9]+)_`)

// RunMigrations applies the archive schema found in dir (usually
// "migrations"). A database that already has a matches table but no version
// table is baselined to the newest file first.
func RunMigrations(databaseURL, dir string) error {
	if databaseURL == "" {
		return errors.New("database URL is empty")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open DB: %w", err)
	}
	defer db.Close()

	driver, err := pg.WithInstance(db, &pg.Config{MigrationsTable: versionTable})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if unversioned, err := hasUnversionedSchema(db); err != nil {
		log.Printf("[MIGRATE] Could not inspect existing schema: %v", err)
	} else if unversioned {
		if latest := findLatestMigrationVersion(dir); latest > 0 {
			log.Printf("[MIGRATE] Baselining existing schema at version %d", latest)
			if err := m.Force(int(latest)); err != nil {
				return fmt.Errorf("baseline to version %d: %w", latest, err)
			}
		}
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Printf("[MIGRATE] Schema up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Printf("[MIGRATE] Migrated to version %d (dirty=%v)", version, dirty)
	return nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, name).Scan(&exists)
	return exists, err
}

// hasUnversionedSchema reports a matches table created outside migrate.
func hasUnversionedSchema(db *sql.DB) (bool, error) {
	matches, err := tableExists(db, "matches")
	if err != nil || !matches {
		return false, err
	}
	versioned, err := tableExists(db, versionTable)
	if err != nil {
		return false, err
	}
	return !versioned, nil
}

// findLatestMigrationVersion returns the highest numeric prefix among the
// migration files in dir, or 0.
func findLatestMigrationVersion(dir string) int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	var latest int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := versionPrefix.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil && v > latest {
			latest = v
		}
	}
	return latest
}
