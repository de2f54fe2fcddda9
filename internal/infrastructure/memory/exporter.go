package memory

import (
	"errors"

	"github.com/http_traffic_log_service/internal/domain/entity"
)

var ErrFeedFull = errors.New("in-memory feed is full")

// ChannelExporter pushes entries onto a channel. In-process stand-in for the
// Kafka mirror; a full channel drops the entry instead of blocking capture.
type ChannelExporter struct {
	Ch chan<- entity.HTTPLogEntry
}

func NewChannelExporter(ch chan<- entity.HTTPLogEntry) *ChannelExporter {
	return &ChannelExporter{Ch: ch}
}

func (e *ChannelExporter) Export(entry entity.HTTPLogEntry) error {
	select {
	case e.Ch <- entry:
		return nil
	default:
		return ErrFeedFull
	}
}

func (e *ChannelExporter) Close() {}
