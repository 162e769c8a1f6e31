package main

import (
	"context"
	"fire-dispatch-service/internal/config"
	"fire-dispatch-service/internal/services"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	path := flag.String("file", "scenarios/custom.yaml", "scenario file to run")
	parallel := flag.Int("parallel", 4, "maximum scenarios run at once")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	file, err := config.LoadScenarioFile(*path)
	if err != nil {
		log.Fatal(err)
	}

	maxExpansions := config.GetInt("SEARCH_MAX_EXPANSIONS", 0)

	results, err := services.RunScenarios(ctx, file.Scenarios, *parallel, maxExpansions)
	if err != nil {
		log.Fatal(err)
	}

	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.Passed() {
			status = "FAIL"
			failed++
		}

		expected := "-"
		if r.Expected != nil {
			expected = strconv.Itoa(*r.Expected)
		}
		log.Printf(
			"scenario=%s strategy=%s distance=%d expected=%s extinguished=%t expanded=%d pruned=%d status=%s",
			r.Name, r.Strategy, r.TotalDistance, expected, r.AllExtinguished, r.Plan.Expanded, r.Plan.Pruned, status,
		)
	}

	log.Printf("scenarios=%d failed=%d", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
