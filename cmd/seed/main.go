// Package main provides a seed tool: it loads the terrain and calendar
// YAML content files and inserts them into an empty database. Existing
// rows are left alone, so the tool is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/forbiddennorth/hexcrawl/internal/config"
	"github.com/forbiddennorth/hexcrawl/internal/content"
	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	terrainsPath := flag.String("terrains", "content/terrains.yaml", "path to terrain seed YAML")
	calendarPath := flag.String("calendar", "content/calendar.yaml", "path to calendar seed YAML")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	terrains, err := content.LoadTerrainsFromFile(*terrainsPath)
	if err != nil {
		log.Fatalf("loading terrain seed: %v", err)
	}

	terrainRepo := postgres.NewTerrainRepository(pool.DB())
	existing, err := terrainRepo.Count(ctx)
	if err != nil {
		log.Fatalf("counting terrains: %v", err)
	}
	if existing > 0 {
		fmt.Printf("terrains: %d rows already present, skipping\n", existing)
	} else {
		for _, t := range terrains {
			if _, err := terrainRepo.Create(ctx, t); err != nil {
				log.Fatalf("seeding terrain %q: %v", t.Name, err)
			}
		}
		fmt.Printf("terrains: seeded %d rows\n", len(terrains))
	}

	cal, err := content.LoadCalendarFromFile(*calendarPath)
	if err != nil {
		log.Fatalf("loading calendar seed: %v", err)
	}

	calRepo := postgres.NewCalendarRepository(pool.DB())
	if err := calRepo.SeedIfEmpty(ctx, cal.Months(), cal.Era()); err != nil {
		log.Fatalf("seeding calendar: %v", err)
	}
	fmt.Printf("calendar: %d months, era %q\n", cal.MonthsPerYear(), cal.Era())

	fmt.Printf("done [%s]\n", time.Since(start).Round(time.Millisecond))
}
