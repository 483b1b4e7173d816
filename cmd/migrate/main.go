package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-seating/internal/database/migrations"
)

func main() {
	_ = godotenv.Load()

	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	dir := flag.String("dir", "./migrations", "directory containing migration files")
	flag.Parse()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set")
	}

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to open postgres: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.Options{MigrationsDir: *dir})
	defer runner.Close()

	if *down {
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("migrate down failed: %v", err)
		}
		log.Println("migrations rolled back")
		return
	}

	if err := runner.MigrateUp(); err != nil {
		log.Fatalf("migrate up failed: %v", err)
	}
	log.Println("migrations applied")
}
