package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/xGihyun/mmu-tabulation-backend/internal/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	migrationsPath := flag.String("path", "", "migrations directory (defaults to database.migrations_path)")
	action := flag.String("action", "up", "up | down | force | version")
	steps := flag.Int("steps", 0, "number of migrations for up/down (0 = all)")
	version := flag.Int("version", -1, "target version for force")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Migrate] Failed to load config: %v", err)
	}
	dir := *migrationsPath
	if dir == "" {
		dir = cfg.Database.MigrationsPath
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresURL())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("[Migrate] Database is unreachable: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(m, *action, *steps, *version); err != nil {
		log.Fatalf("[Migrate] %s failed: %v", *action, err)
	}
}

func run(m *migrate.Migrate, action string, steps, version int) error {
	var err error
	switch action {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "force":
		// Снимает dirty-состояние после упавшей миграции
		if version < 0 {
			return fmt.Errorf("-version is required for force")
		}
		err = m.Force(version)
	case "version":
		v, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied yet.")
			return nil
		}
		if verr != nil {
			return verr
		}
		fmt.Printf("Version: %d, dirty: %t\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No change.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("Success!")
	return nil
}
