// Package buildinfo holds release metadata set at link time with
// -ldflags "-X github.com/aidanlsb/coursedates/internal/buildinfo.Version=...".
package buildinfo

// They default to empty for local/dev builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
