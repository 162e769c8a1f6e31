package main

import (
	"fire-dispatch-service/internal/adapters/repositories"
	"fire-dispatch-service/internal/config"
	"fire-dispatch-service/internal/platform/db"
	"log"

	"github.com/joho/godotenv"
)

// dbtool prepares a Postgres database for the server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitPostgresSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
