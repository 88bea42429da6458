// Package buildversion resolves the version of a module from the build
// info compiled into the running binary.
package buildversion

import (
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

// GetVersion returns the version of modulePath as recorded in the binary's
// build info, or an empty string when the module cannot be found (for
// example under `go test` of the module itself).
func GetVersion(modulePath string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	if info.Main.Path == modulePath {
		return moduleVersion(&info.Main)
	}

	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return moduleVersion(dep)
		}
	}

	return ""
}

func moduleVersion(mod *debug.Module) string {
	if mod.Replace != nil {
		mod = mod.Replace
	}

	// devel builds record a pseudo version like "(devel)"
	if !semver.IsValid(mod.Version) {
		return mod.Version
	}

	return strings.TrimPrefix(mod.Version, "v")
}
