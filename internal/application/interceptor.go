package application

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/http_traffic_log_service/internal/config"
	"github.com/http_traffic_log_service/internal/domain/entity"
	"github.com/http_traffic_log_service/internal/infrastructure/metrics"
)

const writeTimeout = 10 * time.Second

// LoggingTransport wraps a http.RoundTripper and records every exchange that
// passes through it. Log writes happen on their own goroutine so the caller
// never waits on the store; a failed write is logged locally and dropped.
type LoggingTransport struct {
	base       http.RoundTripper
	cfg        *config.Config
	provider   entity.ContextProvider
	repository entity.LogRepository
	exporters  []entity.LogExporter
	session    *Session
	redact     map[string]struct{}
	wg         sync.WaitGroup
}

func NewLoggingTransport(
	base http.RoundTripper,
	cfg *config.Config,
	provider entity.ContextProvider,
	repository entity.LogRepository,
	session *Session,
	exporters []entity.LogExporter,
) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &LoggingTransport{
		base:       base,
		cfg:        cfg,
		provider:   provider,
		repository: repository,
		exporters:  exporters,
		session:    session,
		redact:     redactSet(cfg.RedactHeaders),
	}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.cfg.Enabled || t.cfg.Level == config.LevelNone {
		return t.base.RoundTrip(req)
	}

	hostCtx := t.provider.Context()
	entry := entity.HTTPLogEntry{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC(),
		Method:        req.Method,
		URL:           req.URL.String(),
		Host:          req.URL.Host,
		Path:          req.URL.Path,
		DeviceInfo:    hostCtx.DeviceInfo,
		NetworkType:   hostCtx.NetworkType,
		AppInfo:       hostCtx.AppInfo,
		SessionID:     t.session.ID(),
		Sequence:      t.session.Next(),
		Tags:          t.cfg.Tags,
		RetentionDays: t.cfg.RetentionDays,
		RequestSize:   positiveOrZero(req.ContentLength),
	}

	if t.cfg.Level.CapturesHeaders() {
		entry.RequestHeaders = filterHeaders(req.Header, t.redact)
	}
	if t.cfg.Level.CapturesBody() {
		body, size, restored, readErr := captureBody(req.Body, t.cfg.MaxBodyBytes)
		entry.RequestBody = body
		entry.RequestSize = size
		req.Body = restored
		if readErr != nil {
			entry.ErrorMessage = readErr.Error()
			entry.ErrorCategory = CategorizeError(readErr)
		}
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	entry.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		entry.StatusCategory = entity.StatusUnknown
		entry.ErrorMessage = err.Error()
		entry.ErrorCategory = CategorizeError(err)
		t.dispatch(entry)
		return nil, err
	}

	entry.StatusCode = resp.StatusCode
	entry.StatusCategory = entity.CategorizeStatusCode(resp.StatusCode)
	entry.ResponseSize = positiveOrZero(resp.ContentLength)
	if t.cfg.Level.CapturesHeaders() {
		entry.ResponseHeaders = filterHeaders(resp.Header, t.redact)
	}
	if t.cfg.Level.CapturesBody() {
		body, size, restored, readErr := captureBody(resp.Body, t.cfg.MaxBodyBytes)
		entry.ResponseBody = body
		entry.ResponseSize = size
		resp.Body = restored
		if readErr != nil {
			entry.ErrorMessage = readErr.Error()
			entry.ErrorCategory = CategorizeError(readErr)
		}
	}

	t.dispatch(entry)
	return resp, nil
}

// dispatch hands the entry to the sinks on a background goroutine. No retry,
// no ordering between entries.
func (t *LoggingTransport) dispatch(entry entity.HTTPLogEntry) {
	metrics.CapturedRequests.Inc()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		start := time.Now()
		if err := t.repository.Save(ctx, &entry); err != nil {
			log.Printf("dropping log entry %s: %v", entry.ID, err)
			metrics.DroppedWrites.Inc()
		} else {
			metrics.WriteLatency.WithLabelValues("store").Observe(float64(time.Since(start).Milliseconds()))
		}

		for _, exporter := range t.exporters {
			if err := exporter.Export(entry); err != nil {
				log.Printf("export of log entry %s failed: %v", entry.ID, err)
			}
		}
	}()
}

// Flush blocks until all dispatched writes have finished.
func (t *LoggingTransport) Flush() {
	t.wg.Wait()
}

func positiveOrZero(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
