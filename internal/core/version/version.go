// Package version provides information about the build of the sampling commands.
package version

// BuildInfo holds version information about a command build.
type BuildInfo struct {
	Command string `json:"command"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information for command. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info(command string) BuildInfo {
	// Set via -ldflags "-X 'threadsample/internal/core/version.version=v0.1.0'
	// -X 'threadsample/internal/core/version.commit=abcd' -X 'threadsample/internal/core/version.date=2026-01-02'"
	return BuildInfo{
		Command: command,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// String renders "command version (commit, date)"
func (b BuildInfo) String() string {
	return b.Command + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}

// Fields returns the build info as static log fields
func (b BuildInfo) Fields() map[string]string {
	return map[string]string{"version": b.Version, "commit": b.Commit}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
