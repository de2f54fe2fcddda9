package memory

import "github.com/http_traffic_log_service/internal/domain/entity"

type ChannelFeed struct {
	Ch <-chan entity.HTTPLogEntry
}

func NewChannelFeed(ch <-chan entity.HTTPLogEntry) *ChannelFeed {
	return &ChannelFeed{Ch: ch}
}

func (f *ChannelFeed) Entries() <-chan entity.HTTPLogEntry {
	return f.Ch
}

func (f *ChannelFeed) Close() {}
