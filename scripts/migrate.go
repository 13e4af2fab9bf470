package main

import (
	"log"

	"github.com/Michael-Yan-wun/meeting-tools/internal/adapter/repository"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/database"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// Standalone schema migration, for deployments that separate schema changes
// from service startup. Both binaries also run the same migration on boot,
// so this is optional for single-host setups.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	log.Println("✅ Database connected successfully")

	log.Println("🔄 Ensuring meetings schema...")
	if err := repository.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	log.Println("✅ Schema is up to date")
}
