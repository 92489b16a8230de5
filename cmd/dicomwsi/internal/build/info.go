// Package build holds the version metadata injected into the dicomwsi
// binary at link time.
package build

import (
	"fmt"
	"runtime"
)

// Info describes the running binary's provenance.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

var info *Info

// SetBuildInfo records the version/commit/date ldflags-injected values.
func SetBuildInfo(version, commit, date string) {
	info = &Info{
		Version:   version,
		Commit:    commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Get returns the current build info, or a placeholder if SetBuildInfo was
// never called (e.g. under `go run`).
func Get() Info {
	if info == nil {
		return Info{
			Version:   "dev",
			Commit:    "none",
			BuildDate: "unknown",
			GoVersion: runtime.Version(),
			Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		}
	}
	return *info
}

// String renders a one-line human-readable build banner.
func (i Info) String() string {
	return fmt.Sprintf("dicomwsi %s (commit %s, built %s, %s, %s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}
