// Package manifest models the dependency declarations of a package.json
// style manifest.
//
// A [Manifest] partitions dependencies into [Group]s. Each declared
// dependency carries a [Specifier] whose [Kind] is decided once, when the
// manifest is parsed, and later drives which resolver backend handles it.
package manifest

import (
	"bytes"
	"encoding/json"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/semver"
)

// Group names a dependency group, using the package.json key.
type Group string

const (
	Production  Group = "dependencies"
	Optional    Group = "optionalDependencies"
	Development Group = "devDependencies"
)

// Groups lists every group in resolution order.
var Groups = []Group{Production, Optional, Development}

// Valid reports whether g is one of the known groups.
func (g Group) Valid() bool { return slices.Contains(Groups, g) }

// FileToken marks a specifier that points at the local filesystem.
const FileToken = "file:"

// Kind classifies a specifier by how it must be resolved.
type Kind int

const (
	// KindSource is a source-host reference such as "github:owner/repo#ref".
	// Anything that is neither local nor a valid range falls here.
	KindSource Kind = iota
	// KindLocal is a path on disk, marked with [FileToken].
	KindLocal
	// KindRange is a semantic version range resolved against the registry.
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRange:
		return "range"
	default:
		return "source"
	}
}

// Specifier is the declared value of a dependency.
type Specifier struct {
	Kind Kind
	Raw  string
}

// ParseSpecifier classifies raw. The file token wins over range syntax.
func ParseSpecifier(raw string) Specifier {
	switch {
	case strings.Contains(raw, FileToken):
		return Specifier{Kind: KindLocal, Raw: raw}
	case semver.ValidRange(raw):
		return Specifier{Kind: KindRange, Raw: raw}
	default:
		return Specifier{Kind: KindSource, Raw: raw}
	}
}

func (s Specifier) String() string { return s.Raw }

// Manifest describes a package and its direct dependencies.
type Manifest struct {
	Name    string
	Version string
	Deps    map[Group]map[string]Specifier
}

// New returns an empty manifest.
func New(name, version string) *Manifest {
	return &Manifest{Name: name, Version: version, Deps: make(map[Group]map[string]Specifier)}
}

// Add declares a dependency, classifying raw with [ParseSpecifier].
func (m *Manifest) Add(g Group, name, raw string) *Manifest {
	if m.Deps == nil {
		m.Deps = make(map[Group]map[string]Specifier)
	}
	if m.Deps[g] == nil {
		m.Deps[g] = make(map[string]Specifier)
	}
	m.Deps[g][name] = ParseSpecifier(raw)
	return m
}

// Group returns the dependencies declared in g, or nil if g is absent.
func (m *Manifest) Group(g Group) map[string]Specifier {
	if m == nil {
		return nil
	}
	return m.Deps[g]
}

// Names returns the dependency names of g in sorted order.
func (m *Manifest) Names(g Group) []string {
	return slices.Sorted(maps.Keys(m.Group(g)))
}

// Clone returns a deep copy of m.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return New("", "")
	}
	c := &Manifest{Name: m.Name, Version: m.Version, Deps: make(map[Group]map[string]Specifier, len(m.Deps))}
	for g, deps := range m.Deps {
		c.Deps[g] = maps.Clone(deps)
	}
	return c
}

// Dedupe removes production entries that are also declared as optional with
// the exact same specifier string, so they resolve once, as optional.
// Differing specifiers are left alone. It reports the removed names.
func (m *Manifest) Dedupe() []string {
	opt, prod := m.Group(Optional), m.Group(Production)
	if len(opt) == 0 || len(prod) == 0 {
		return nil
	}
	var removed []string
	for name, spec := range opt {
		if p, ok := prod[name]; ok && p.Raw == spec.Raw {
			delete(prod, name)
			removed = append(removed, name)
		}
	}
	slices.Sort(removed)
	return removed
}

// ReadFile parses the manifest at path.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "parse %s", path)
	}
	return m, nil
}

// Parse decodes a package.json document.
//
// Groups that are not JSON objects and specifiers that are not strings fail
// with INVALID_MANIFEST naming the offending group and dependency.
func Parse(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "manifest is not a JSON object")
	}
	return FromMap(raw)
}

// FromMap builds a manifest from decoded JSON.
func FromMap(raw map[string]any) (*Manifest, error) {
	m := New(stringField(raw, "name"), stringField(raw, "version"))

	for _, g := range Groups {
		v, ok := raw[string(g)]
		if !ok || v == nil {
			continue
		}
		deps, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "%s must be an object, got %T", g, v)
		}
		group := make(map[string]Specifier, len(deps))
		for name, spec := range deps {
			s, ok := spec.(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "%s: specifier for %q must be a string, got %T", g, name, spec)
			}
			if err := errors.ValidatePackageName(name); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s: bad dependency name", g)
			}
			group[name] = ParseSpecifier(s)
		}
		m.Deps[g] = group
	}
	return m, nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// MarshalJSON encodes m in package.json layout.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Deps)+2)
	if m.Name != "" {
		out["name"] = m.Name
	}
	if m.Version != "" {
		out["version"] = m.Version
	}
	for g, deps := range m.Deps {
		group := make(map[string]string, len(deps))
		for name, spec := range deps {
			group[name] = spec.Raw
		}
		out[string(g)] = group
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes m from package.json layout.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
