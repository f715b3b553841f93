// Package semver matches resolved versions against npm-style version ranges.
//
// It is a thin wrapper around github.com/Masterminds/semver/v3. Ranges use
// the Masterminds constraint grammar, which covers the npm forms that appear
// in manifests ("^1.2.0", "~1.4", ">=1.2.0 <2.0.0", "1.x", "1.0.0 - 2.0.0",
// "a || b"). The empty range means any version, as in npm.
package semver

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a parsed semantic version.
type Version struct {
	v *mm.Version
}

// Constraint is a parsed version range.
type Constraint struct {
	c *mm.Constraints
}

func normalizeRange(raw string) string {
	if s := strings.TrimSpace(raw); s != "" {
		return s
	}
	return "*"
}

// ParseVersion parses a semantic version such as "1.2.3" or "v2.0.0-rc.1".
func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

// ParseConstraint parses a version range.
func ParseConstraint(raw string) (Constraint, error) {
	c, err := mm.NewConstraint(normalizeRange(raw))
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return Constraint{c: c}, nil
}

// String returns the original version text.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

// ValidRange reports whether raw parses as a version range.
func ValidRange(raw string) bool {
	_, err := ParseConstraint(raw)
	return err == nil
}

// Check reports whether v satisfies c.
func Check(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// Satisfies reports whether version satisfies rng. Unparseable input on
// either side never satisfies.
func Satisfies(version, rng string) bool {
	v, err := ParseVersion(version)
	if err != nil {
		return false
	}
	c, err := ParseConstraint(rng)
	if err != nil {
		return false
	}
	return Check(v, c)
}

// Compare compares a and b, returning -1, 0 or 1.
// An unset version sorts before any set version.
func Compare(a, b Version) int {
	switch {
	case a.v == nil && b.v == nil:
		return 0
	case a.v == nil:
		return -1
	case b.v == nil:
		return 1
	}
	return a.v.Compare(b.v)
}

// MaxSatisfying returns the highest candidate that satisfies rng.
// Candidates that do not parse as versions are ignored.
func MaxSatisfying(rng string, candidates []string) (string, bool) {
	c, err := ParseConstraint(rng)
	if err != nil {
		return "", false
	}

	var best Version
	found := false
	for _, raw := range candidates {
		v, err := ParseVersion(raw)
		if err != nil || !Check(v, c) {
			continue
		}
		if !found || Compare(v, best) > 0 {
			best = v
			found = true
		}
	}
	return best.String(), found
}

// Matcher implements the version check used for circular-dependency
// detection. The zero value is ready to use.
type Matcher struct{}

// Satisfies reports whether version satisfies rng.
func (Matcher) Satisfies(version, rng string) bool { return Satisfies(version, rng) }
