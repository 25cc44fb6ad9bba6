// Package version stamps builds and the matching algorithm revision
package version

import "runtime/debug"

// Matcher is the algorithm revision written next to every persisted outcome.
// Bump it when thresholds, normalization or tie breaking change.
const Matcher = "match-2"

// BuildInfo describes the running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Matcher string `json:"matcher"`
}

// set with -ldflags "-X outreach/internal/core/version.version=v1.2.0 ..."
var (
	version = "dev"
	commit  = ""
	date    = "unknown"
)

// Info returns build info for service; commit falls back to the vcs stamp
func Info(service string) BuildInfo {
	c := commit
	if c == "" {
		c = vcsRevision()
	}
	return BuildInfo{Service: service, Version: version, Commit: c, Date: date, Matcher: Matcher}
}

func vcsRevision() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				if len(s.Value) > 7 {
					return s.Value[:7]
				}
				return s.Value
			}
		}
	}
	return "none"
}
