package application

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/http_traffic_log_service/internal/domain/entity"
)

// CategorizeError buckets a transport error for display. The buckets are
// intentionally coarse; the raw error text is kept on the entry.
func CategorizeError(err error) entity.ErrorCategory {
	if err == nil {
		return entity.ErrorNone
	}

	if errors.Is(err, context.Canceled) {
		return entity.ErrorCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return entity.ErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return entity.ErrorDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return entity.ErrorTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return entity.ErrorConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return entity.ErrorConnection
	}

	return entity.ErrorOther
}
