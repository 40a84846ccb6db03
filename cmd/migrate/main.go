package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"qnotify/config"
	"qnotify/internal/db"
	"qnotify/migrations"
)

func main() {
	cfg := config.Load()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	conn, err := sql.Open("pgx", db.DSN(cfg.DB))
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set dialect: %v", err)
	}

	switch command {
	case "up":
		err = goose.Up(conn, ".")
	case "down":
		err = goose.Down(conn, ".")
	case "status":
		err = goose.Status(conn, ".")
	default:
		log.Fatalf("unknown command %q (want up, down or status)", command)
	}
	if err != nil {
		log.Fatalf("migration %s failed: %v", command, err)
	}
}
