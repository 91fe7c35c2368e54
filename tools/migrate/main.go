package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/lib/pq"
	_ "github.com/curatorbot/autopost-engine/internal/migrations"
	"github.com/curatorbot/autopost-engine/pkg/config"
	"github.com/pressly/goose/v3"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|status|reset]")
	}
	command := os.Args[1]

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Migrations are compiled in; the directory only anchors goose's
	// version scan.
	const dir = "."

	switch command {
	case "up":
		err = goose.Up(db, dir)
	case "down":
		err = goose.Down(db, dir)
	case "status":
		err = goose.Status(db, dir)
	case "reset":
		err = goose.Reset(db, dir)
	default:
		log.Fatalf("Unknown command: %s", command)
	}
	if err != nil {
		log.Fatalf("Migration command %s failed: %v", command, err)
	}
}
