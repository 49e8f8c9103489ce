// Package buildinfo reports which netview build is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/netview/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/netview/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/netview/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/netview
//
// Unstamped builds (go install, go run) fall back to the module version and
// VCS settings the toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info describes a build.
type Info struct {
	Version string
	Commit  string
	Date    string
	Dirty   bool
}

var current = sync.OnceValue(func() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(Info{Version: Version, Commit: Commit, Date: Date}, bi)
})

// Current returns the build of the running binary.
func Current() Info { return current() }

// resolve fills unstamped fields of in from the embedded build info.
func resolve(in Info, bi *debug.BuildInfo) Info {
	if bi == nil {
		return in
	}
	if in.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		in.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if in.Commit == "none" {
				in.Commit = s.Value
			}
		case "vcs.time":
			if in.Date == "unknown" {
				in.Date = s.Value
			}
		case "vcs.modified":
			in.Dirty = s.Value == "true"
		}
	}
	return in
}

// Template returns the cobra version template.
func Template() string {
	i := Current()
	commit := i.Commit
	if i.Dirty {
		commit += " (modified)"
	}
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, commit, i.Date)
}

// UserAgent identifies netview in outgoing HTTP requests.
func UserAgent() string {
	return "netview/" + Current().Version
}
