package hostinfo_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/http_traffic_log_service/internal/hostinfo"
)

func TestContextReportsHost(t *testing.T) {
	provider := hostinfo.NewProvider("1.2.3")
	ctx := provider.Context()

	if !strings.HasPrefix(ctx.DeviceInfo, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("DeviceInfo = %q, want %s/%s prefix", ctx.DeviceInfo, runtime.GOOS, runtime.GOARCH)
	}
	if !strings.HasSuffix(ctx.AppInfo, "1.2.3") {
		t.Errorf("AppInfo = %q, want version suffix", ctx.AppInfo)
	}
	if ctx.NetworkType == "" {
		t.Error("NetworkType is blank")
	}
}

func TestContextIsCached(t *testing.T) {
	provider := hostinfo.NewProvider("")

	first := provider.Context()
	second := provider.Context()

	if first.DeviceInfo != second.DeviceInfo {
		t.Errorf("DeviceInfo changed between calls: %q vs %q", first.DeviceInfo, second.DeviceInfo)
	}
	if first.AppInfo != second.AppInfo {
		t.Errorf("AppInfo changed between calls: %q vs %q", first.AppInfo, second.AppInfo)
	}
}
