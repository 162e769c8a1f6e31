package main

import (
	"context"
	"database/sql"
	"fire-dispatch-service/internal/adapters/cache"
	"fire-dispatch-service/internal/adapters/repositories"
	"fire-dispatch-service/internal/api"
	"fire-dispatch-service/internal/api/handlers"
	"fire-dispatch-service/internal/config"
	"fire-dispatch-service/internal/platform/db"
	"fire-dispatch-service/internal/ports"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Server-side cap on nodes expanded by one optimal search.
const defaultMaxExpansions = 500_000

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	dbPath := config.Get("DB_PATH", "data/app.db")
	databaseURL := config.Get("DATABASE_URL", "")
	redisURL := config.Get("REDIS_URL", "")
	cacheTTL := config.GetDuration("PLAN_CACHE_TTL", 24*time.Hour)
	maxExpansions := config.GetInt("SEARCH_MAX_EXPANSIONS", defaultMaxExpansions)
	searchTimeout := config.GetDuration("SEARCH_TIMEOUT", handlers.DefaultSearchTimeout)
	if maxExpansions <= 0 {
		log.Printf("SEARCH_MAX_EXPANSIONS=%d is not allowed for the server, using %d", maxExpansions, defaultMaxExpansions)
		maxExpansions = defaultMaxExpansions
	}

	// SQLite is always opened: it holds run history unless Postgres is set,
	// and the plan cache unless Redis is set.
	local, err := openLocalDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer local.Close()

	var runs ports.DispatchRepository = repositories.NewSqliteDispatchRepository(local)
	if databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()

		if err := repositories.InitPostgresSchema(pg); err != nil {
			log.Fatal(err)
		}
		runs = repositories.NewSQLDispatchRepository(pg)
		log.Println("Dispatch history stored in Postgres")
	}

	var planCache ports.PlanCache = cache.NewSqlitePlanCache(local, cacheTTL)
	if redisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedisPlanCacheFromURL(ctx, redisURL, cacheTTL)
		cancel()
		if err != nil {
			log.Fatal(err)
		}
		defer rc.Close()

		planCache = rc
		log.Println("Plan cache backed by Redis")
	}

	router := api.NewRouter(runs, planCache, maxExpansions, searchTimeout)

	// WriteTimeout does not stop a running handler; searches are bounded by
	// maxExpansions and searchTimeout. Keep searchTimeout below WriteTimeout so
	// the 503 still reaches the client.
	log.Printf("Server listening addr=:%s max_expansions=%d search_timeout=%s", port, maxExpansions, searchTimeout)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openLocalDB(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("openLocalDB: create %q: %w", dir, err)
		}
	}

	conn, err := db.OpenSqlite(dbPath)
	if err != nil {
		return nil, err
	}

	if err := repositories.InitSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("openLocalDB: %w", err)
	}
	return conn, nil
}
