// Package resolve builds nested dependency trees from manifests.
//
// A [Builder] walks a manifest's dependency groups, resolves every entry
// through one of three backends chosen by the entry's specifier kind, and
// recurses into each resolved package's own manifest. Siblings resolve
// concurrently; each task returns its finished subtree and the parent merges
// them once all children settle, so no map is written from two goroutines.
//
// Circular dependencies are cut by checking the ancestry: when an ancestor
// with the same name already resolved to a version that satisfies the
// requested range, the entry is skipped. Otherwise it is resolved again,
// which allows a different version of the same package deeper in the tree.
//
// Development dependencies are only resolved for the root manifest.
package resolve

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ziplock/pkg/manifest"
)

// DefaultMaxDepth bounds recursion when no ancestor ever satisfies a
// repeated dependency.
const DefaultMaxDepth = 64

// Resolution is the result of resolving a single specifier.
type Resolution struct {
	Version  string             // Resolved version identifier
	Manifest *manifest.Manifest // The resolved package's own manifest (nil means no deps)
}

// LocalResolver resolves specifiers that point at the filesystem.
type LocalResolver interface {
	Resolve(ctx context.Context, spec string) (*Resolution, error)
}

// RegistryResolver resolves a package name and version range against a
// package registry.
type RegistryResolver interface {
	Resolve(ctx context.Context, name, versionRange string) (*Resolution, error)
}

// SourceResolver resolves direct source-host references.
type SourceResolver interface {
	Resolve(ctx context.Context, spec string) (*Resolution, error)
}

// Matcher reports whether an installed version satisfies a requested range.
// It must be safe for concurrent use.
type Matcher interface {
	Satisfies(version, versionRange string) bool
}

// LocalFunc adapts a function to [LocalResolver].
type LocalFunc func(ctx context.Context, spec string) (*Resolution, error)

func (f LocalFunc) Resolve(ctx context.Context, spec string) (*Resolution, error) { return f(ctx, spec) }

// RegistryFunc adapts a function to [RegistryResolver].
type RegistryFunc func(ctx context.Context, name, versionRange string) (*Resolution, error)

func (f RegistryFunc) Resolve(ctx context.Context, name, versionRange string) (*Resolution, error) {
	return f(ctx, name, versionRange)
}

// SourceFunc adapts a function to [SourceResolver].
type SourceFunc func(ctx context.Context, spec string) (*Resolution, error)

func (f SourceFunc) Resolve(ctx context.Context, spec string) (*Resolution, error) { return f(ctx, spec) }

// MatcherFunc adapts a function to [Matcher].
type MatcherFunc func(version, versionRange string) bool

func (f MatcherFunc) Satisfies(version, versionRange string) bool { return f(version, versionRange) }

// Backends groups the collaborators a [Builder] dispatches to.
// Every resolver must be safe for concurrent use.
type Backends struct {
	Local    LocalResolver
	Registry RegistryResolver
	Source   SourceResolver
	Matcher  Matcher
}

// Options configures a [Builder].
type Options struct {
	MaxDepth int         // Maximum ancestry length before failing (default: 64)
	OmitDev  bool        // Skip the root manifest's development dependencies
	Logger   *log.Logger // Progress logging (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Frame records one resolved ancestor on the way from the root manifest to
// the manifest currently being resolved.
type Frame struct {
	Group   manifest.Group
	Name    string
	Version string
	Spec    manifest.Specifier
}
