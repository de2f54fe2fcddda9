package application

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Session groups the entries captured by one logger instance and hands out
// monotonic sequence numbers, since async writes give no ordering guarantee.
type Session struct {
	id  string
	seq atomic.Int64
}

func NewSession() *Session {
	return &Session{id: uuid.New().String()}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Next() int64 {
	return s.seq.Add(1)
}
