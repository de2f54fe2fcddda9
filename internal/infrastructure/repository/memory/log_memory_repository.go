package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/http_traffic_log_service/internal/domain/entity"
)

// LogRepositoryInMemory keeps entries in a map. Used by tests and local
// development where no document store is reachable.
type LogRepositoryInMemory struct {
	mu      sync.RWMutex
	entries map[string]entity.HTTPLogEntry
}

func NewLogMemoryRepository() *LogRepositoryInMemory {
	return &LogRepositoryInMemory{
		entries: make(map[string]entity.HTTPLogEntry),
	}
}

func (r *LogRepositoryInMemory) Save(ctx context.Context, entry *entity.HTTPLogEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = *entry
	return nil
}

func (r *LogRepositoryInMemory) FindRecent(ctx context.Context, limit int64) ([]entity.HTTPLogEntry, error) {
	return r.find(func(entity.HTTPLogEntry) bool { return true }, limit), nil
}

func (r *LogRepositoryInMemory) FindByStatusCode(ctx context.Context, code int, limit int64) ([]entity.HTTPLogEntry, error) {
	return r.find(func(e entity.HTTPLogEntry) bool { return e.StatusCode == code }, limit), nil
}

func (r *LogRepositoryInMemory) FindByMethod(ctx context.Context, method string, limit int64) ([]entity.HTTPLogEntry, error) {
	method = strings.ToUpper(method)
	return r.find(func(e entity.HTTPLogEntry) bool { return strings.ToUpper(e.Method) == method }, limit), nil
}

func (r *LogRepositoryInMemory) find(match func(entity.HTTPLogEntry) bool, limit int64) []entity.HTTPLogEntry {
	r.mu.RLock()
	matched := make([]entity.HTTPLogEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		if match(entry) {
			matched = append(matched, entry)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if n := entity.ClampLimit(limit); int64(len(matched)) > n {
		matched = matched[:n]
	}
	return matched
}

func (r *LogRepositoryInMemory) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, entry := range r.entries {
		if entry.Timestamp.Before(cutoff) {
			delete(r.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *LogRepositoryInMemory) DeleteAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := int64(len(r.entries))
	r.entries = make(map[string]entity.HTTPLogEntry)
	return deleted, nil
}

func (r *LogRepositoryInMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
