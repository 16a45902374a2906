// Package version provides build-time version information.
//
// Set values at build time with ldflags:
//
//	go build -ldflags "\
//	  -X github.com/ncobase/recruit/version.Version=1.2.3 \
//	  -X github.com/ncobase/recruit/version.Branch=main \
//	  -X 'github.com/ncobase/recruit/version.BuiltAt=$(date -u +%FT%TZ)'" ./cmd/recruit
//
// Unset values fall back to the VCS stamp embedded by the go toolchain.
// The version is logged on startup and printed by `recruit version`.
package version
