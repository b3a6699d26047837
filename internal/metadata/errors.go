package metadata

import (
	"fmt"
	"strings"
)

// MetadataParsingError reports a dependency graph whose shape cannot be
// used: undecodable input, a missing root, a root without exactly one
// dependency, or an unparsable version requirement.
type MetadataParsingError struct {
	Reason string
	Err    error
}

func (e *MetadataParsingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata: %s: %v", e.Reason, e.Err)
	}
	return "metadata: " + e.Reason
}

func (e *MetadataParsingError) Unwrap() error { return e.Err }

// PackageNotFoundError reports that no package matched the root's
// dependency.
type PackageNotFoundError struct {
	Dependency Dependency
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("metadata: no package matches dependency %s", describe(e.Dependency))
}

// AmbiguousPackageError reports that several packages matched the root's
// dependency. Candidates holds their ids in graph order.
type AmbiguousPackageError struct {
	Dependency Dependency
	Candidates []string
}

func (e *AmbiguousPackageError) Error() string {
	return fmt.Sprintf("metadata: %d packages match dependency %s: %s",
		len(e.Candidates), describe(e.Dependency), strings.Join(e.Candidates, ", "))
}

func describe(d Dependency) string {
	if d.IsPath() {
		return fmt.Sprintf("%q (path %s)", d.Name, d.Path)
	}
	return fmt.Sprintf("%q (req %s)", d.Name, d.Req)
}
