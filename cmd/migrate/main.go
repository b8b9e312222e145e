package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"finbook/internal/config"
)

const usage = `Usage: migrate [up|down|steps N|version]

Applies the SQL pairs under db/migrations against the database named by the
FINBOOK_DB_* settings. "steps N" accepts a negative N to roll back.`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := migrate.New("file://db/migrations", cfg.DB.DSN())
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	switch cmd := os.Args[1]; cmd {
	case "up":
		report(m.Up(), "schema migrated to latest")

	case "down":
		report(m.Down(), "schema rolled all the way back")

	case "steps":
		if len(os.Args) < 3 {
			log.Fatal("steps requires a number argument")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("invalid steps argument: %v", err)
		}
		report(m.Steps(n), fmt.Sprintf("applied %d migration steps", n))

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n", cmd)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func report(err error, done string) {
	switch err {
	case nil:
		log.Println(done)
	case migrate.ErrNoChange:
		log.Println("schema already up to date")
	default:
		log.Fatalf("migration failed: %v", err)
	}
}
