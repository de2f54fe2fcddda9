package entity

import (
	"context"
	"time"
)

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 500
)

// ClampLimit forces query limits into [1, MaxQueryLimit]; non-positive values
// fall back to the default.
func ClampLimit(limit int64) int64 {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}

type LogRepository interface {
	Save(ctx context.Context, entry *HTTPLogEntry) error
	FindRecent(ctx context.Context, limit int64) ([]HTTPLogEntry, error)
	FindByStatusCode(ctx context.Context, code int, limit int64) ([]HTTPLogEntry, error)
	FindByMethod(ctx context.Context, method string, limit int64) ([]HTTPLogEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
