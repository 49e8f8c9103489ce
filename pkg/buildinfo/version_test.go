package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	unstamped := Info{Version: "dev", Commit: "none", Date: "unknown"}
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T08:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name string
		in   Info
		bi   *debug.BuildInfo
		want Info
	}{
		{"no build info", unstamped, nil, unstamped},
		{"from build info", unstamped, bi, Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-10-01T08:00:00Z", Dirty: true}},
		{"ldflags win", Info{Version: "v1.0.0", Commit: "fff", Date: "today"}, bi, Info{Version: "v1.0.0", Commit: "fff", Date: "today", Dirty: true}},
		{"devel module", unstamped, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, unstamped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.in, tt.bi); got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	if ua := UserAgent(); !strings.HasPrefix(ua, "netview/") || len(ua) == len("netview/") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(Template(), "{{.Name}} version "+Current().Version) {
		t.Errorf("Template() = %q", Template())
	}
}
