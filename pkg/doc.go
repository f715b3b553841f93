// Package pkg holds the ziplock libraries.
//
// ziplock turns a package.json into a fully nested dependency tree: every
// dependency is resolved to a concrete version and carries the tree of its
// own dependencies, down to the leaves.
//
// # Data Flow
//
//	package.json
//	     ↓
//	[manifest] parse dependency groups and classify specifiers
//	     ↓
//	[resolve] walk the groups, dispatching each entry to a backend
//	     ↓              ↘
//	[tree]        [backends/npm], [backends/github], [backends/local]
//	     ↓                         ↓
//	[lockfile]              [integrations] HTTP clients over [cache]
//
// # Packages
//
// [manifest] parses package.json files into dependency groups and classifies
// each version specifier as a registry range, a GitHub reference or a local
// path.
//
// [resolve] is the tree builder. Siblings resolve concurrently, circular
// dependencies are cut when an ancestor already satisfies the requested
// range, and development dependencies are only followed at the root.
//
// [backends] adapts the registry, source-host and filesystem lookups to the
// resolver interfaces in [resolve].
//
// [integrations] contains the npm registry and GitHub API clients. Responses
// are cached through [cache], which has file, Redis and no-op backends.
//
// [tree] holds the result and renders it as JSON, text, DOT or SVG.
//
// [lockfile] persists trees to disk or MongoDB, and [server] exposes building
// and storage over HTTP with metrics from [observability].
//
// [config], [errors], [semver] and [buildinfo] support the rest.
//
// # Quick Start
//
//	m, _ := manifest.ReadFile("package.json")
//	b := resolve.New(resolve.Backends{
//	    Registry: npm.New(npmapi.NewClient(cache.NewNullCache(), "", 24*time.Hour), false),
//	    Matcher:  semver.Matcher{},
//	}, resolve.Options{})
//	t, _ := b.Build(ctx, m)
//	t.WriteText(os.Stdout, m.Name)
//
// [manifest]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/manifest
// [resolve]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/resolve
// [backends]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/backends
// [backends/npm]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/backends/npm
// [backends/github]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/backends/github
// [backends/local]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/backends/local
// [integrations]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/cache
// [tree]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/tree
// [lockfile]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/lockfile
// [server]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/errors
// [semver]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/semver
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/ziplock/pkg/buildinfo
package pkg
