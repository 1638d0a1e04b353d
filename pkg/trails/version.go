package trails

import (
	"fmt"

	"github.com/bft-labs/trails/pkg/config"
	"github.com/bft-labs/trails/pkg/env"
	"github.com/bft-labs/trails/pkg/event"
	"github.com/bft-labs/trails/pkg/lifecycle"
	"github.com/bft-labs/trails/pkg/log"
	"github.com/bft-labs/trails/pkg/trailpack"
)

// Version is the version of the trails engine.
const Version = "1.0.0"

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"config":    {config.Version, config.MinCompatibleVersion},
		"env":       {env.Version, env.MinCompatibleVersion},
		"event":     {event.Version, event.MinCompatibleVersion},
		"lifecycle": {lifecycle.Version, lifecycle.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
		"trailpack": {trailpack.Version, trailpack.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible reports whether version >= minVersion.
// Both are "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
