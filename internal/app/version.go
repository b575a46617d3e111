package app

import "fmt"

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X github.com/tejashwikalptaru/tunewave/internal/app.Version=1.0.0" ./cmd
var (
	Version   = "dev"
	GitCommit = "unknown"
	GitTag    = ""
	BuildTime = "unknown"
)

// shortCommit is how many characters of the commit hash Short shows.
const shortCommit = 7

// VersionInfo contains version information for the application.
type VersionInfo struct {
	Version   string
	GitCommit string
	GitTag    string
	BuildTime string
}

// GetVersionInfo returns the current version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// name prefers the tag a release was built from.
func (v VersionInfo) name() string {
	if v.GitTag != "" {
		return v.GitTag
	}
	return v.Version
}

// Short returns the version shown in the About dialog, e.g. "v1.2.0" or
// "dev (3f2a9c1)" for untagged builds.
func (v VersionInfo) Short() string {
	if v.GitTag != "" || v.GitCommit == "" || v.GitCommit == "unknown" {
		return v.name()
	}
	commit := v.GitCommit
	if len(commit) > shortCommit {
		commit = commit[:shortCommit]
	}
	return fmt.Sprintf("%s (%s)", v.name(), commit)
}

// FullString returns a detailed version string for logging.
func (v VersionInfo) FullString() string {
	return fmt.Sprintf("TuneWave %s (commit: %s, built: %s)", v.name(), v.GitCommit, v.BuildTime)
}
