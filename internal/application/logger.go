package application

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/http_traffic_log_service/internal/config"
	"github.com/http_traffic_log_service/internal/domain/entity"
	"github.com/http_traffic_log_service/internal/infrastructure/metrics"
)

// TrafficLogger is the entry point for instrumented applications. It owns the
// session, builds transports and passes query and cleanup calls through to the
// repository.
type TrafficLogger struct {
	cfg        *config.Config
	repository entity.LogRepository
	provider   entity.ContextProvider
	exporters  []entity.LogExporter
	session    *Session

	mu         sync.Mutex
	transports []*LoggingTransport
}

func NewTrafficLogger(
	cfg *config.Config,
	repository entity.LogRepository,
	provider entity.ContextProvider,
	exporters ...entity.LogExporter,
) (*TrafficLogger, error) {
	cfg.Clamp()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &TrafficLogger{
		cfg:        cfg,
		repository: repository,
		provider:   provider,
		exporters:  exporters,
		session:    NewSession(),
	}, nil
}

func (l *TrafficLogger) SessionID() string {
	return l.session.ID()
}

// Transport returns a logging round tripper wrapping base. base may be nil.
func (l *TrafficLogger) Transport(base http.RoundTripper) *LoggingTransport {
	t := NewLoggingTransport(base, l.cfg, l.provider, l.repository, l.session, l.exporters)

	l.mu.Lock()
	l.transports = append(l.transports, t)
	l.mu.Unlock()

	return t
}

// WrapClient swaps the client's transport for a logging one.
func (l *TrafficLogger) WrapClient(client *http.Client) {
	client.Transport = l.Transport(client.Transport)
}

func (l *TrafficLogger) Recent(ctx context.Context, limit int64) ([]entity.HTTPLogEntry, error) {
	return l.repository.FindRecent(ctx, limit)
}

func (l *TrafficLogger) ByStatusCode(ctx context.Context, code int, limit int64) ([]entity.HTTPLogEntry, error) {
	return l.repository.FindByStatusCode(ctx, code, limit)
}

func (l *TrafficLogger) ByMethod(ctx context.Context, method string, limit int64) ([]entity.HTTPLogEntry, error) {
	return l.repository.FindByMethod(ctx, method, limit)
}

// PurgeExpired removes entries older than the configured retention window.
func (l *TrafficLogger) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -l.cfg.RetentionDays)
	return l.PurgeOlderThan(ctx, cutoff)
}

func (l *TrafficLogger) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := l.repository.DeleteOlderThan(ctx, cutoff)
	metrics.PurgedEntries.Add(float64(deleted))
	return deleted, err
}

func (l *TrafficLogger) Clear(ctx context.Context) (int64, error) {
	deleted, err := l.repository.DeleteAll(ctx)
	metrics.PurgedEntries.Add(float64(deleted))
	return deleted, err
}

// Close waits for in-flight writes and releases the exporters.
func (l *TrafficLogger) Close() {
	l.mu.Lock()
	transports := l.transports
	l.mu.Unlock()

	for _, t := range transports {
		t.Flush()
	}
	for _, exporter := range l.exporters {
		exporter.Close()
	}
}
