// Package version reports what build of trustee is running. Release
// builds stamp Version and BuildDate via ldflags:
//
//	-ldflags "-X github.com/trusteehq/trustee/internal/version.Version=v1.0.0
//	          -X github.com/trusteehq/trustee/internal/version.BuildDate=2026-08-27"
//
// Unstamped builds fall back to module build info or a dev marker.
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version   = ""
	BuildDate = ""
)

// Info is the structured form, served by the status endpoint.
type Info struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Revision string `json:"revision,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Get returns the version string for this build.
func Get() string {
	if Version != "" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			return v
		}
		if rev := vcsRevision(bi); len(rev) >= 7 {
			return "dev-" + rev[:7]
		}
	}
	return "dev"
}

// GetInfo returns the full build description.
func GetInfo(name string) Info {
	info := Info{Name: name, Version: Get(), Date: BuildDate}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.Revision = vcsRevision(bi)
	}
	return info
}

// String renders the one-line form used by the version command.
func String(name string) string {
	return fmt.Sprintf("%s version %s", name, Get())
}

func vcsRevision(bi *debug.BuildInfo) string {
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
