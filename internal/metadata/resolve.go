package metadata

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Resolve returns the single package matching the root's only dependency.
// Candidates are first narrowed by name, then by manifest path for path
// dependencies or by version for requirement dependencies.
func Resolve(g *Graph) (*Package, error) {
	root, err := g.RootPackage()
	if err != nil {
		return nil, err
	}
	if n := len(root.Dependencies); n != 1 {
		return nil, &MetadataParsingError{
			Reason: fmt.Sprintf("root package %q has %d dependencies, want exactly 1", root.Name, n),
		}
	}
	dep := root.Dependencies[0]

	var match func(*Package) bool
	if dep.IsPath() {
		match = func(p *Package) bool { return underPath(p.ManifestPath, dep.Path) }
	} else {
		c, err := ParseRequirement(dep.Req)
		if err != nil {
			return nil, err
		}
		match = func(p *Package) bool {
			if p.Version == "" {
				return false
			}
			v, err := semver.NewVersion(p.Version)
			if err != nil {
				return false
			}
			return c.Check(v)
		}
	}

	var found []*Package
	for i := range g.Packages {
		p := &g.Packages[i]
		if p.Name == dep.Name && match(p) {
			found = append(found, p)
		}
	}

	switch len(found) {
	case 0:
		return nil, &PackageNotFoundError{Dependency: dep}
	case 1:
		return found[0], nil
	default:
		ids := make([]string, len(found))
		for i, p := range found {
			ids[i] = p.ID
		}
		return nil, &AmbiguousPackageError{Dependency: dep, Candidates: ids}
	}
}

// ParseRequirement parses a Cargo-style version requirement. Comparators
// are comma-separated and all must hold; a comparator with no operator is
// a caret requirement. An empty requirement matches any version.
func ParseRequirement(req string) (*semver.Constraints, error) {
	req = strings.TrimSpace(req)
	if req == "" {
		req = "*"
	}
	parts := strings.Split(req, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p[0] >= '0' && p[0] <= '9' {
			p = "^" + p
		}
		parts[i] = p
	}
	c, err := semver.NewConstraint(strings.Join(parts, ", "))
	if err != nil {
		return nil, &MetadataParsingError{Reason: fmt.Sprintf("invalid version requirement %q", req), Err: err}
	}
	return c, nil
}

// underPath reports whether manifest lies at or below dir, comparing whole
// path components so that /a/bc is not under /a/b.
func underPath(manifest, dir string) bool {
	if manifest == "" {
		return false
	}
	manifest = filepath.Clean(manifest)
	dir = filepath.Clean(dir)
	if manifest == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(manifest, dir)
}
