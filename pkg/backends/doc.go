// Package backends holds the resolvers a [resolve.Builder] dispatches to.
//
//   - [local] reads package.json files referenced with the file: token
//   - [npm] picks versions from an npm-compatible registry
//   - [github] pins GitHub references to a commit and reads its package.json
//
// Each subpackage returns errors coded with [errors.Code] values so callers
// can tell a missing package from a network failure.
//
// [resolve.Builder]: github.com/matzehuels/ziplock/pkg/resolve.Builder
// [local]: github.com/matzehuels/ziplock/pkg/backends/local
// [npm]: github.com/matzehuels/ziplock/pkg/backends/npm
// [github]: github.com/matzehuels/ziplock/pkg/backends/github
// [errors.Code]: github.com/matzehuels/ziplock/pkg/errors.Code
package backends
