// Package version carries build metadata reported by the CLI and health endpoint.
package version

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/docserve/internal/version.Version=v1.0.0".
var Version = "unknown"

// Additional build metadata, set the same way.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String summarises the build for --version output.
func String() string {
	if GitCommit == "unknown" {
		return Version
	}
	return Version + " (" + GitCommit + ", " + BuildTime + ")"
}
