package common

import "fmt"

const (
	major = 0
	minor = 3
	patch = 0

	// Version of the Janitor program and clients. Both sides of the
	// protocol are built from the same tree, so a single number is enough.
	Version = major*1_000_000 + minor*1_000 + patch
)

// VersionString returns Version in the "major.minor.patch" form.
func VersionString() string {
	return FormatVersion(Version)
}

// FormatVersion formats numeric version produced by the Version arithmetic.
func FormatVersion(v int) string {
	return fmt.Sprintf("%d.%d.%d", v/1_000_000, v%1_000_000/1_000, v%1_000)
}
