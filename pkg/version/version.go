// Package version carries build metadata stamped at link time via -ldflags.
package version

// Set with:
//
//	go build -ldflags "-X github.com/mtarnawa/diffscope/pkg/version.Version=v1.2.3 ..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
