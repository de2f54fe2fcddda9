package application_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/http_traffic_log_service/internal/application"
	"github.com/http_traffic_log_service/internal/config"
	"github.com/http_traffic_log_service/internal/domain/entity"
	"github.com/http_traffic_log_service/internal/infrastructure/repository/memory"
)

type stubProvider struct{}

func (stubProvider) Context() entity.ClientContext {
	return entity.ClientContext{
		DeviceInfo:  "linux/amd64 test-host",
		AppInfo:     "test-app 0.0.1",
		NetworkType: "ethernet",
	}
}

func testConfig(level config.CaptureLevel) *config.Config {
	cfg := config.Default()
	cfg.APIKey = "test-key"
	cfg.Level = level
	return cfg
}

func newLogger(t *testing.T, cfg *config.Config) (*application.TrafficLogger, *memory.LogRepositoryInMemory) {
	t.Helper()
	repo := memory.NewLogMemoryRepository()
	logger, err := application.NewTrafficLogger(cfg, repo, stubProvider{})
	if err != nil {
		t.Fatalf("NewTrafficLogger: %v", err)
	}
	return logger, repo
}

func TestRoundTripCapturesExchange(t *testing.T) {
	var receivedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		receivedBody = string(data)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, "hello world")
	}))
	defer server.Close()

	logger, _ := newLogger(t, testConfig(config.LevelBody))
	client := server.Client()
	logger.WrapClient(client)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/things", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if receivedBody != `{"a":1}` {
		t.Errorf("server saw body %q, interception must not consume it", receivedBody)
	}
	if string(respBody) != "hello world" {
		t.Errorf("client saw body %q, interception must not consume it", respBody)
	}

	logger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	entries, err := logger.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	entry := entries[0]
	if entry.Method != http.MethodPost {
		t.Errorf("Method = %q", entry.Method)
	}
	if entry.Path != "/things" {
		t.Errorf("Path = %q", entry.Path)
	}
	if entry.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d", entry.StatusCode)
	}
	if entry.StatusCategory != entity.StatusSuccess {
		t.Errorf("StatusCategory = %q", entry.StatusCategory)
	}
	if entry.RequestBody != `{"a":1}` {
		t.Errorf("RequestBody = %q", entry.RequestBody)
	}
	if entry.ResponseBody != "hello world" {
		t.Errorf("ResponseBody = %q", entry.ResponseBody)
	}
	if entry.RequestHeaders["Authorization"] != "[redacted]" {
		t.Errorf("Authorization header not redacted: %q", entry.RequestHeaders["Authorization"])
	}
	if entry.RequestHeaders["Content-Type"] != "application/json" {
		t.Errorf("Content-Type header = %q", entry.RequestHeaders["Content-Type"])
	}
	if entry.SessionID != logger.SessionID() {
		t.Errorf("SessionID = %q, want %q", entry.SessionID, logger.SessionID())
	}
	if entry.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", entry.Sequence)
	}
	if entry.DeviceInfo != "linux/amd64 test-host" || entry.NetworkType != "ethernet" {
		t.Errorf("host context not attached: %q / %q", entry.DeviceInfo, entry.NetworkType)
	}
	if entry.DurationMs < 0 {
		t.Errorf("DurationMs = %d", entry.DurationMs)
	}
	if entry.RetentionDays != config.DefaultRetentionDays {
		t.Errorf("RetentionDays = %d", entry.RetentionDays)
	}
}

func TestRoundTripBodyTruncation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("y", 200))
	}))
	defer server.Close()

	cfg := testConfig(config.LevelBody)
	cfg.MaxBodyBytes = 16

	logger, _ := newLogger(t, cfg)
	client := server.Client()
	logger.WrapClient(client)

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(data) != 200 {
		t.Errorf("client saw %d bytes, want 200", len(data))
	}

	logger.Close()

	entries, err := logger.Recent(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if len(entries[0].ResponseBody) != 16 {
		t.Errorf("stored body is %d bytes, want 16", len(entries[0].ResponseBody))
	}
	if entries[0].ResponseSize != 200 {
		t.Errorf("ResponseSize = %d, want 200", entries[0].ResponseSize)
	}
}

func TestRoundTripResponseBodyReadError(t *testing.T) {
	// Declaring more bytes than the handler writes makes the server cut the
	// connection mid-body, so the client's read fails partway through.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		io.WriteString(w, "partial")
	}))
	defer server.Close()

	logger, _ := newLogger(t, testConfig(config.LevelBody))
	client := &http.Client{}
	logger.WrapClient(client)

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	data, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	if string(data) != "partial" {
		t.Errorf("client saw %q, want the bytes received before the failure", data)
	}
	if readErr == nil {
		t.Fatal("client read error is nil, a truncated body passed as complete")
	}

	logger.Close()

	entries, err := logger.Recent(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	entry := entries[0]
	if entry.ResponseBody != "partial" {
		t.Errorf("ResponseBody = %q, want %q", entry.ResponseBody, "partial")
	}
	if entry.ErrorMessage == "" {
		t.Error("ErrorMessage is blank, body read failure was not recorded")
	}
}

func TestRoundTripRecordsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	logger, _ := newLogger(t, testConfig(config.LevelBasic))
	client := &http.Client{}
	logger.WrapClient(client)

	if _, err := client.Get(target); err == nil {
		t.Fatal("expected request to fail")
	}

	logger.Close()

	entries, err := logger.Recent(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	entry := entries[0]
	if entry.ErrorMessage == "" {
		t.Error("ErrorMessage is blank")
	}
	if entry.ErrorCategory == entity.ErrorNone {
		t.Error("ErrorCategory is blank")
	}
	if entry.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", entry.StatusCode)
	}
}

func TestRoundTripLevelBasicOmitsDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "payload")
	}))
	defer server.Close()

	logger, _ := newLogger(t, testConfig(config.LevelBasic))
	client := server.Client()
	logger.WrapClient(client)

	if _, err := client.Get(server.URL); err != nil {
		t.Fatal(err)
	}
	logger.Close()

	entries, err := logger.Recent(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	entry := entries[0]
	if entry.RequestHeaders != nil || entry.ResponseHeaders != nil {
		t.Error("basic level must not capture headers")
	}
	if entry.RequestBody != "" || entry.ResponseBody != "" {
		t.Error("basic level must not capture bodies")
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", entry.StatusCode)
	}
}

func TestRoundTripDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	for _, name := range []string{"level none", "disabled"} {
		cfg := testConfig(config.LevelNone)
		if name == "disabled" {
			cfg = testConfig(config.LevelBody)
			cfg.Enabled = false
		}

		logger, repo := newLogger(t, cfg)
		client := &http.Client{}
		logger.WrapClient(client)

		if _, err := client.Get(server.URL); err != nil {
			t.Fatal(err)
		}
		logger.Close()

		if repo.Len() != 0 {
			t.Errorf("%s: %d entries stored, want 0", name, repo.Len())
		}
	}
}
