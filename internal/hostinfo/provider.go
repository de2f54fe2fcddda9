package hostinfo

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/http_traffic_log_service/internal/domain/entity"
)

// Provider reports host metadata for captured entries. Device and app info
// never change at runtime, so they are resolved once and cached; the network
// type is probed on every call.
type Provider struct {
	appVersion string

	once   sync.Once
	device string
	app    string
}

func NewProvider(appVersion string) *Provider {
	return &Provider{appVersion: appVersion}
}

func (p *Provider) Context() entity.ClientContext {
	p.once.Do(func() {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		p.device = fmt.Sprintf("%s/%s %s (%s)", runtime.GOOS, runtime.GOARCH, hostname, runtime.Version())

		app := "unknown"
		if exe, err := os.Executable(); err == nil {
			app = filepath.Base(exe)
		}
		if p.appVersion != "" {
			app = app + " " + p.appVersion
		}
		p.app = app
	})

	return entity.ClientContext{
		DeviceInfo:  p.device,
		AppInfo:     p.app,
		NetworkType: networkType(),
	}
}

// networkType buckets the first usable interface into a coarse label. Good
// enough for the dashboard's grouping; not a reachability check.
func networkType() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "unknown"
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		return classifyInterface(iface.Name)
	}
	return "offline"
}

func classifyInterface(name string) string {
	switch {
	case strings.HasPrefix(name, "wl"):
		return "wifi"
	case strings.HasPrefix(name, "en"), strings.HasPrefix(name, "eth"):
		return "ethernet"
	case strings.HasPrefix(name, "ww"), strings.HasPrefix(name, "rmnet"):
		return "cellular"
	default:
		return "other"
	}
}
