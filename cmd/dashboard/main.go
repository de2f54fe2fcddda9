package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/http_traffic_log_service/internal/config"
	"github.com/http_traffic_log_service/internal/domain/entity"
	"github.com/http_traffic_log_service/internal/infrastructure/kafka"
	"github.com/http_traffic_log_service/internal/infrastructure/repository/mongodb"
	"github.com/http_traffic_log_service/internal/infrastructure/websocket"
)

func main() {
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

	hub := websocket.NewHub()
	go hub.Run()

	var feed entity.LogFeed
	if cfg.UseKafka {
		feed = kafka.NewKafkaFeed(cfg.KafkaTopic, "dashboard_group")
		go hub.Pump(feed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupShutdownHandler(cancel)

	server := &http.Server{
		Addr:    listenAddr(),
		Handler: newRouter(repository, hub),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Dashboard listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Shutdown with error: %v", err)
	}

	hub.Stop()
	if feed != nil {
		feed.Close()
	}
}

func listenAddr() string {
	if addr := os.Getenv("DASHBOARD_LISTEN_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}

func setupShutdownHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
		log.Println("Initiating graceful shutdown...")
	}()
}

func newRouter(repository entity.LogRepository, hub *websocket.Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/logs", handleLogs(repository))
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// handleLogs serves recent entries, optionally filtered by status code or
// method. status wins when both are given.
func handleLogs(repository entity.LogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var limit int64
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		var (
			entries []entity.HTTPLogEntry
			err     error
		)
		switch {
		case r.URL.Query().Get("status") != "":
			var code int
			code, err = strconv.Atoi(r.URL.Query().Get("status"))
			if err != nil {
				http.Error(w, "invalid status", http.StatusBadRequest)
				return
			}
			entries, err = repository.FindByStatusCode(r.Context(), code, limit)
		case r.URL.Query().Get("method") != "":
			entries, err = repository.FindByMethod(r.Context(), r.URL.Query().Get("method"), limit)
		default:
			entries, err = repository.FindRecent(r.Context(), limit)
		}

		if err != nil {
			log.Printf("log query failed: %v", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if entries == nil {
			entries = []entity.HTTPLogEntry{}
		}
		json.NewEncoder(w).Encode(entries)
	}
}
