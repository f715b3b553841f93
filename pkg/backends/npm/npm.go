// Package npm resolves version ranges against an npm registry.
package npm

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/integrations"
	npmapi "github.com/matzehuels/ziplock/pkg/integrations/npm"
	"github.com/matzehuels/ziplock/pkg/manifest"
	"github.com/matzehuels/ziplock/pkg/resolve"
	"github.com/matzehuels/ziplock/pkg/semver"
)

// Fetcher retrieves packuments. [npmapi.Client] implements it.
type Fetcher interface {
	FetchPackument(ctx context.Context, name string, refresh bool) (*npmapi.Packument, error)
}

// Resolver picks a concrete version for a name and range.
//
// Concurrent lookups of the same package share one fetch. With Refresh set,
// each package is re-fetched from the registry once per Resolver and later
// lookups reuse that result through the cache.
type Resolver struct {
	fetcher Fetcher
	refresh bool

	group     singleflight.Group
	refreshed sync.Map // name -> struct{}
}

// New returns a Resolver backed by f.
func New(f Fetcher, refresh bool) *Resolver {
	return &Resolver{fetcher: f, refresh: refresh}
}

// Resolve returns the chosen version of name and a manifest of its
// dependencies and optionalDependencies.
func (r *Resolver) Resolve(ctx context.Context, name, versionRange string) (*resolve.Resolution, error) {
	doc, err := r.packument(ctx, name)
	if err != nil {
		return nil, integrations.Classify(err, "fetch %s", name)
	}

	version, ok := SelectVersion(doc, versionRange)
	if !ok {
		return nil, errors.New(errors.ErrCodePackageNotFound, "no version of %s satisfies %q", name, versionRange)
	}

	info := doc.Versions[version]
	m := manifest.New(name, version)
	for dep, spec := range info.Dependencies {
		m.Add(manifest.Production, dep, spec)
	}
	for dep, spec := range info.OptionalDependencies {
		m.Add(manifest.Optional, dep, spec)
	}
	return &resolve.Resolution{Version: version, Manifest: m}, nil
}

func (r *Resolver) packument(ctx context.Context, name string) (*npmapi.Packument, error) {
	// The fetch is shared by every caller of name, so it must outlive any
	// single caller's context.
	ch := r.group.DoChan(name, func() (any, error) {
		refresh := false
		if r.refresh {
			_, done := r.refreshed.Load(name)
			refresh = !done
		}
		doc, err := r.fetcher.FetchPackument(context.WithoutCancel(ctx), name, refresh)
		if err == nil && refresh {
			r.refreshed.Store(name, struct{}{})
		}
		return doc, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*npmapi.Packument), nil
	}
}

// SelectVersion chooses the version of doc that versionRange resolves to.
// The "latest" dist-tag wins when it satisfies the range, matching what the
// npm client installs; otherwise the highest satisfying version is used.
func SelectVersion(doc *npmapi.Packument, versionRange string) (string, bool) {
	if latest := doc.Latest(); latest != "" {
		if _, published := doc.Versions[latest]; published && semver.Satisfies(latest, versionRange) {
			return latest, true
		}
	}
	return semver.MaxSatisfying(versionRange, doc.VersionList())
}
