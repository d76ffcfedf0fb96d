package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"homewatch/internal/logger"
	"homewatch/internal/repository/sqlite"
	"homewatch/internal/zones"
)

// Converts legacy location rectangles stored in the database into
// zone-file entries. Older deployments defined areas as rows in the
// locations table; the zones file is the format everything reads now.
func main() {
	dbPath := flag.String("db", "data/visual_memory.db", "Database path")
	zonesFile := flag.String("zones", "zones.json", "Zones file to write")
	logDir := flag.String("logs", "logs", "Log directory")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	fmt.Printf("Migrating locations from %s to %s\n", *dbPath, *zonesFile)

	appLogger := logger.NewLogger(*logDir)

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	locationRepo := sqlite.NewLocationRepository(db)
	locations, err := locationRepo.GetAll()
	if err != nil {
		log.Fatalf("Failed to read locations: %v", err)
	}

	if len(locations) == 0 {
		fmt.Println("No legacy locations found, nothing to migrate")
		return
	}

	store := zones.NewStore(*zonesFile, appLogger)
	existing := store.Load()

	names := make(map[string]bool, len(existing))
	for _, zone := range existing {
		names[zone.Name] = true
	}

	merged := existing
	skipped := 0
	for _, loc := range locations {
		if names[loc.Name] {
			log.Printf("⚠️  Skipping %s: zone with that name already exists", loc.Name)
			skipped++
			continue
		}
		zone := loc.Zone()
		if zone.W <= 0 || zone.H <= 0 {
			log.Printf("⚠️  Skipping %s: degenerate rectangle", loc.Name)
			skipped++
			continue
		}
		merged = append(merged, zone)
		names[zone.Name] = true
	}

	if err := store.Replace(merged); err != nil {
		log.Fatalf("Failed to write zones file: %v", err)
	}

	fmt.Printf("✅ Migrated %d locations into %s (%d zones total)\n",
		len(locations)-skipped, *zonesFile, len(merged))
	if skipped > 0 {
		fmt.Printf("⚠️  Skipped %d locations (duplicates or invalid)\n", skipped)
	}
}
