// Package version holds the build version of mcphost.
package version

import "runtime/debug"

// Version is set at build time with -ldflags "-X github.com/mcpjungle/mcphost/pkg/version.Version=v1.2.3".
var Version = ""

// GetVersion returns the build version, falling back to the module version recorded by the go toolchain.
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
