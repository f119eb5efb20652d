// Package version holds build-time identity for the vocalrange CLI,
// overridable via -ldflags at build time.
package version

var (
	name    = "vocalrange"
	version = "dev"
	commit  = "none"
)

// Name returns the CLI binary's name.
func Name() string {
	return name
}

// Version returns the build version, or "dev" outside a release build.
func Version() string {
	return version
}

// Commit returns the build's source commit, or "none" outside a release
// build.
func Commit() string {
	return commit
}
