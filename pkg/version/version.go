// Package version provides the modguard tool version.
package version

// Version is the modguard tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/ingo-eichhorst/modguard/pkg/version.Version=2.0.1"
var Version = "dev"
