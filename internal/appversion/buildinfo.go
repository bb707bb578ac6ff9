// Package appversion exposes the version the qgen binaries were built
// as. Release builds stamp it at link time; untagged builds report
// "dev".
package appversion

// version is stamped via -ldflags "-X qgen/internal/appversion.version=...".
var version = "dev" //nolint:gochecknoglobals // ldflags requires package-level var

// String reports the stamped build version.
func String() string {
	return version
}
