// Package settings provides build metadata, runtime configuration, and
// context helpers used across the nvtree CLI and its packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "nvtree"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
// ServerAddress and ConfigPath are filled from flags; empty values defer to
// the config file and environment.
type Run struct {
	ConfigPath    string
	ServerAddress string
	NoColor       bool
}

// NewCliParams returns Run defaults for a CLI invocation: no config file, no
// editor address, and color output.
func NewCliParams() *Run {
	return &Run{}
}
