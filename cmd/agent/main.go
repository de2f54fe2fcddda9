package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/http_traffic_log_service/internal/application"
	"github.com/http_traffic_log_service/internal/config"
	"github.com/http_traffic_log_service/internal/domain/entity"
	"github.com/http_traffic_log_service/internal/hostinfo"
	"github.com/http_traffic_log_service/internal/infrastructure/kafka"
	"github.com/http_traffic_log_service/internal/infrastructure/memory"
	memstore "github.com/http_traffic_log_service/internal/infrastructure/repository/memory"
	"github.com/http_traffic_log_service/internal/infrastructure/repository/mongodb"
)

const version = "0.1.0"

// Demo agent: wraps a plain http.Client with the traffic logger and fetches
// the URLs given on the command line.
func main() {
	flag.Parse()
	urls := flag.Args()
	if len(urls) == 0 {
		log.Fatal("usage: agent [url ...]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	repository := initRepository(cfg)

	var exporters []entity.LogExporter
	if cfg.UseKafka {
		exporters = append(exporters, kafka.NewKafkaExporter(cfg.KafkaTopic))
	}

	// In-process live view of captured traffic, same shape as the dashboard's
	// Kafka feed.
	liveCh := make(chan entity.HTTPLogEntry, 64)
	exporters = append(exporters, memory.NewChannelExporter(liveCh))
	go func() {
		feed := memory.NewChannelFeed(liveCh)
		for entry := range feed.Entries() {
			log.Printf("live: %s %s [%s]", entry.Method, entry.URL, entry.StatusCategory)
		}
	}()

	logger, err := application.NewTrafficLogger(cfg, repository, hostinfo.NewProvider(version), exporters...)
	if err != nil {
		log.Fatalf("Failed to build traffic logger: %v", err)
	}

	if metricsHost := os.Getenv("METRICS_HOST_AGENT"); metricsHost != "" {
		initMetricsServer(metricsHost)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	logger.WrapClient(client)

	for _, url := range urls {
		resp, err := client.Get(url)
		if err != nil {
			log.Printf("GET %s failed: %v", url, err)
			continue
		}
		resp.Body.Close()
		log.Printf("GET %s -> %d", url, resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Async writes race with the queries below; Close flushes them first.
	logger.Close()

	entries, err := logger.Recent(ctx, int64(len(urls)))
	if err != nil {
		log.Fatalf("Failed to read back entries: %v", err)
	}
	for _, entry := range entries {
		log.Printf("[%d] %s %s %s in %dms", entry.Sequence, entry.Method, entry.URL, entry.StatusCategory, entry.DurationMs)
	}
}

func initRepository(cfg *config.Config) entity.LogRepository {
	if cfg.MongoURL == "" {
		log.Print("MONGODB_URL not set, keeping entries in memory")
		return memstore.NewLogMemoryRepository()
	}
	conn := mongodb.StartConnection(cfg.MongoURL)
	return mongodb.NewLogMongoDBRepository(conn, cfg.Database, cfg.APIKey)
}

func initMetricsServer(host string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(host, nil); err != nil {
			log.Fatalf("Metrics server failed: %v", err)
		}
	}()
	log.Printf("Metrics server listening on %s", host)
}
