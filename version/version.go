// Package version holds build-time metadata injected via -ldflags.
package version

import "runtime"

// These are overridden at build time via:
//
//	go build -ldflags "-X github.com/outlinehq/specloc/version.GitRelease=v0.1.0 ..."
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
)

// GoInfo is the Go runtime version the binary was built with.
var GoInfo = runtime.Version()
