package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/http_traffic_log_service/internal/config"
	"github.com/http_traffic_log_service/internal/infrastructure/repository/mongodb"
)

// The janitor enforces retention out of band: the capture path never deletes
// anything itself.
func main() {
	days := flag.Int("days", 0, "delete entries older than this many days (default: configured retention)")
	all := flag.Bool("all", false, "delete every entry for the configured api key")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline for the purge")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if err := cfg.ValidateStore(); err != nil {
		log.Fatalf("Invalid store config: %v", err)
	}

	conn := mongodb.StartConnection(cfg.MongoURL)
	repository := mongodb.NewLogMongoDBRepository(conn, cfg.Database, cfg.APIKey)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *all {
		deleted, err := repository.DeleteAll(ctx)
		if err != nil {
			log.Fatalf("Purge failed after removing %d entries: %v", deleted, err)
		}
		log.Printf("Removed all %d entries", deleted)
		return
	}

	retention := cfg.RetentionDays
	if *days > 0 {
		retention = *days
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retention)

	deleted, err := repository.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Fatalf("Purge failed after removing %d entries: %v", deleted, err)
	}
	log.Printf("Removed %d entries older than %s", deleted, cutoff.Format(time.RFC3339))
}
