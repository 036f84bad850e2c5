package main

import (
	"database/sql"
	"flag"
	"fleet-simulation-service/internal/adapters/repositories"
	"fleet-simulation-service/internal/config"
	"fleet-simulation-service/internal/platform/db"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	driver := flag.String("driver", config.Get("DB_DRIVER", config.DriverPostgres), "database driver: sqlite or postgres")
	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/fleet.json"), "fleet seed JSON file")
	schemaOnly := flag.Bool("schema-only", false, "create tables without seeding")
	flag.Parse()

	dsn := config.Get("DATABASE_URL", "")
	if *driver == config.DriverSQLite {
		dsn = config.Get("DB_PATH", "data/app.db")
	}
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, dialect, err := db.OpenDialect(*driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	initAndSeed(conn, dialect, *seedPath, *schemaOnly)
}

func initAndSeed(conn *sql.DB, dialect repositories.Dialect, seedPath string, schemaOnly bool) {
	log.Printf("Initializing database schema dialect=%s...", dialect)
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if schemaOnly {
		return
	}

	log.Printf("Seeding database from %s...", seedPath)
	if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
