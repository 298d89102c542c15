package darksim

import "fmt"

// Simulator version constants. The version tags stats files and log lines
// so archived runs can be matched to the code that produced them.
const (
	// VersionMajor is the major version. Changes that alter routing or
	// swap semantics increment this.
	VersionMajor = 1

	// VersionMinor is the minor version. New knobs and reports increment
	// this.
	VersionMinor = 0

	// VersionPatch is the patch version.
	VersionPatch = 0
)

// Version returns the simulator version as a semantic version string.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
