package cinelog

import (
	"fmt"
	"runtime"
)

// Version information
const (
	Version       = "0.3.0"
	SchemaVersion = "2"
	MinGoVersion  = "1.24"
)

// BuildInfo contains build information
var BuildInfo = struct {
	Version       string `json:"version"`
	SchemaVersion string `json:"schema_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildDate     string `json:"build_date,omitempty"`
	GoVersion     string `json:"go_version"`
}{
	Version:       Version,
	SchemaVersion: SchemaVersion,
	GoVersion:     runtime.Version(),
}

// SetBuildInfo is called by the build process
func SetBuildInfo(commit, date, goVersion string) {
	BuildInfo.GitCommit = commit
	BuildInfo.BuildDate = date
	if goVersion != "" {
		BuildInfo.GoVersion = goVersion
	}
}

// VersionInfo returns formatted version information
func VersionInfo() string {
	return fmt.Sprintf("cinelog %s (schema %s)", BuildInfo.Version, BuildInfo.SchemaVersion)
}

// FullVersionInfo returns detailed version information
func FullVersionInfo() string {
	info := fmt.Sprintf("cinelog %s\n", BuildInfo.Version)
	info += fmt.Sprintf("Schema Version: %s\n", BuildInfo.SchemaVersion)
	info += fmt.Sprintf("Go Version: %s\n", BuildInfo.GoVersion)

	if BuildInfo.GitCommit != "" {
		info += fmt.Sprintf("Git Commit: %s\n", BuildInfo.GitCommit)
	}

	if BuildInfo.BuildDate != "" {
		info += fmt.Sprintf("Build Date: %s\n", BuildInfo.BuildDate)
	}

	return info
}
