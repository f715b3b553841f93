package resolve

import (
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/manifest"
	"github.com/matzehuels/ziplock/pkg/observability"
	"github.com/matzehuels/ziplock/pkg/tree"
)

// Builder resolves manifests into dependency trees.
// A Builder holds no per-build state and may run several builds at once.
type Builder struct {
	backends Backends
	opts     Options
}

// New creates a Builder. A nil Matcher disables circular short-circuiting
// for range specifiers.
func New(backends Backends, opts Options) *Builder {
	if backends.Matcher == nil {
		backends.Matcher = MatcherFunc(func(string, string) bool { return false })
	}
	return &Builder{backends: backends, opts: opts.WithDefaults()}
}

// Build resolves m and all of its transitive dependencies.
//
// It returns either the complete tree or the first resolution failure; no
// partial tree is ever returned. Once one branch fails, the context handed
// to in-flight resolvers is canceled and their results are discarded.
func (b *Builder) Build(ctx context.Context, m *manifest.Manifest) (tree.Tree, error) {
	root := ""
	if m != nil {
		root = m.Name
	}
	hooks := observability.Resolve()
	hooks.OnBuildStart(ctx, root)
	start := time.Now()

	result, err := b.buildTree(ctx, m, nil, !b.opts.OmitDev)
	if err != nil {
		hooks.OnBuildComplete(ctx, root, 0, time.Since(start), err)
		return nil, err
	}
	if result == nil {
		result = tree.Tree{}
	}

	hooks.OnBuildComplete(ctx, root, result.Count(), time.Since(start), nil)
	return result, nil
}

// buildTree resolves the groups of m concurrently and merges the results.
// The manifest is cloned before dedup so callers never see it change.
func (b *Builder) buildTree(ctx context.Context, m *manifest.Manifest, ancestors []Frame, dev bool) (tree.Tree, error) {
	if len(ancestors) > b.opts.MaxDepth {
		return nil, errors.New(errors.ErrCodeDepthExceeded,
			"dependency chain deeper than %d: %s", b.opts.MaxDepth, chain(ancestors))
	}

	m = m.Clone()
	for _, name := range m.Dedupe() {
		b.opts.Logger.Debug("optional dependency overrides production", "name", name)
	}

	groups := []manifest.Group{manifest.Production, manifest.Optional}
	if dev {
		groups = append(groups, manifest.Development)
	}

	parts := make([]tree.Tree, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			part, err := b.resolveGroup(gctx, group, m, ancestors)
			parts[i] = part
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out tree.Tree
	for _, part := range parts {
		if len(part) == 0 {
			continue
		}
		if out == nil {
			out = tree.Tree{}
		}
		out.Merge(part)
	}
	return out, nil
}

// resolveGroup resolves every dependency of one group concurrently.
// An absent group yields a nil tree.
func (b *Builder) resolveGroup(ctx context.Context, group manifest.Group, m *manifest.Manifest, ancestors []Frame) (tree.Tree, error) {
	deps := m.Group(group)
	if len(deps) == 0 {
		return nil, nil
	}

	names := m.Names(group)
	nodes := make([]*tree.Node, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		spec := deps[name]
		if b.satisfiedByAncestor(name, spec, ancestors) {
			b.opts.Logger.Info("circular dependency ignored", "name", name, "spec", spec.Raw)
			observability.Resolve().OnCircularSkip(ctx, name)
			continue
		}
		g.Go(func() error {
			n, err := b.resolveDependency(gctx, group, name, spec, ancestors)
			nodes[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := tree.Tree{}
	for i, n := range nodes {
		if n != nil {
			out.Set(group, names[i], n)
		}
	}
	return out, nil
}

// satisfiedByAncestor checks the outermost ancestor named name. A range is
// satisfied when the ancestor's version matches it; local and source
// specifiers are satisfied by an ancestor declared with the same string.
func (b *Builder) satisfiedByAncestor(name string, spec manifest.Specifier, ancestors []Frame) bool {
	i := slices.IndexFunc(ancestors, func(f Frame) bool { return f.Name == name })
	if i < 0 {
		return false
	}
	f := ancestors[i]
	if b.backends.Matcher.Satisfies(f.Version, spec.Raw) {
		return true
	}
	return spec.Kind != manifest.KindRange && f.Spec.Raw == spec.Raw
}

// resolveDependency resolves one entry, creates its node with the version
// set, then fills in the node's subtree.
func (b *Builder) resolveDependency(ctx context.Context, group manifest.Group, name string, spec manifest.Specifier, ancestors []Frame) (*tree.Node, error) {
	res, err := b.dispatch(ctx, name, spec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, err, "resolve %s %s@%s", group, name, spec.Raw)
	}

	node := &tree.Node{Version: res.Version}
	b.opts.Logger.Debug("resolved", "group", group, "name", name, "version", res.Version)

	frames := append(slices.Clip(ancestors), Frame{Group: group, Name: name, Version: res.Version, Spec: spec})
	deps, err := b.buildTree(ctx, res.Manifest, frames, false)
	if err != nil {
		return nil, err
	}
	node.Deps = deps
	return node, nil
}

// dispatch sends spec to the backend matching its kind.
func (b *Builder) dispatch(ctx context.Context, name string, spec manifest.Specifier) (*Resolution, error) {
	backend := backendName(spec.Kind)
	start := time.Now()

	var (
		res *Resolution
		err error
	)
	switch spec.Kind {
	case manifest.KindLocal:
		if b.backends.Local == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "no filesystem resolver configured")
		}
		res, err = b.backends.Local.Resolve(ctx, spec.Raw)
	case manifest.KindRange:
		if b.backends.Registry == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "no registry resolver configured")
		}
		res, err = b.backends.Registry.Resolve(ctx, name, spec.Raw)
	default:
		if b.backends.Source == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "no source-host resolver configured")
		}
		res, err = b.backends.Source.Resolve(ctx, spec.Raw)
	}

	observability.Resolve().OnResolve(ctx, backend, name, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New(errors.ErrCodeInternal, "%s resolver returned no result for %s", backend, name)
	}
	return res, nil
}

func chain(frames []Frame) string {
	names := make([]string, 0, len(frames))
	for _, f := range frames {
		names = append(names, f.Name)
	}
	if len(names) > 8 {
		names = slices.Concat(names[:4], []string{"..."}, names[len(names)-3:])
	}
	return strings.Join(names, " > ")
}

func backendName(k manifest.Kind) string {
	switch k {
	case manifest.KindLocal:
		return "local"
	case manifest.KindRange:
		return "registry"
	default:
		return "source"
	}
}
