package entity

import (
	"errors"
	"time"
)

type StatusCategory string

const (
	StatusInformational StatusCategory = "informational"
	StatusSuccess       StatusCategory = "success"
	StatusRedirect      StatusCategory = "redirect"
	StatusClientError   StatusCategory = "client_error"
	StatusServerError   StatusCategory = "server_error"
	StatusUnknown       StatusCategory = "unknown"
)

func CategorizeStatusCode(code int) StatusCategory {
	switch {
	case code >= 100 && code < 200:
		return StatusInformational
	case code >= 200 && code < 300:
		return StatusSuccess
	case code >= 300 && code < 400:
		return StatusRedirect
	case code >= 400 && code < 500:
		return StatusClientError
	case code >= 500 && code < 600:
		return StatusServerError
	default:
		return StatusUnknown
	}
}

type ErrorCategory string

const (
	ErrorNone       ErrorCategory = ""
	ErrorTimeout    ErrorCategory = "timeout"
	ErrorCanceled   ErrorCategory = "canceled"
	ErrorDNS        ErrorCategory = "dns"
	ErrorConnection ErrorCategory = "connection"
	ErrorOther      ErrorCategory = "other"
)

// HTTPLogEntry is one captured request/response exchange. Entries are built
// once by the interceptor and never mutated afterwards.
type HTTPLogEntry struct {
	ID              string            `bson:"_id" json:"id"`
	Timestamp       time.Time         `bson:"timestamp" json:"timestamp"`
	Method          string            `bson:"method" json:"method"`
	URL             string            `bson:"url" json:"url"`
	Host            string            `bson:"host" json:"host"`
	Path            string            `bson:"path" json:"path"`
	RequestHeaders  map[string]string `bson:"request_headers,omitempty" json:"request_headers,omitempty"`
	ResponseHeaders map[string]string `bson:"response_headers,omitempty" json:"response_headers,omitempty"`
	RequestBody     string            `bson:"request_body,omitempty" json:"request_body,omitempty"`
	ResponseBody    string            `bson:"response_body,omitempty" json:"response_body,omitempty"`
	StatusCode      int               `bson:"status_code" json:"status_code"`
	StatusCategory  StatusCategory    `bson:"status_category" json:"status_category"`
	ErrorMessage    string            `bson:"error,omitempty" json:"error,omitempty"`
	ErrorCategory   ErrorCategory     `bson:"error_category,omitempty" json:"error_category,omitempty"`
	DurationMs      int64             `bson:"duration_ms" json:"duration_ms"`
	RequestSize     int64             `bson:"request_size" json:"request_size"`
	ResponseSize    int64             `bson:"response_size" json:"response_size"`
	DeviceInfo      string            `bson:"device_info" json:"device_info"`
	NetworkType     string            `bson:"network_type" json:"network_type"`
	AppInfo         string            `bson:"app_info" json:"app_info"`
	SessionID       string            `bson:"session_id" json:"session_id"`
	Sequence        int64             `bson:"sequence" json:"sequence"`
	Tags            []string          `bson:"tags,omitempty" json:"tags,omitempty"`
	RetentionDays   int               `bson:"retention_days" json:"retention_days"`
}

var (
	ErrBlankID        = errors.New("entry id must not be blank")
	ErrBlankMethod    = errors.New("entry method must not be blank")
	ErrBlankURL       = errors.New("entry url must not be blank")
	ErrBlankSessionID = errors.New("entry session id must not be blank")
	ErrZeroTimestamp  = errors.New("entry timestamp must be set")
)

func (e *HTTPLogEntry) Validate() error {
	if e.ID == "" {
		return ErrBlankID
	}
	if e.Method == "" {
		return ErrBlankMethod
	}
	if e.URL == "" {
		return ErrBlankURL
	}
	if e.SessionID == "" {
		return ErrBlankSessionID
	}
	if e.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}

func (e *HTTPLogEntry) ExpiresAt() time.Time {
	return e.Timestamp.AddDate(0, 0, e.RetentionDays)
}
