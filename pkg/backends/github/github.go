// Package github resolves dependencies that point at GitHub repositories.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/integrations"
	ghapi "github.com/matzehuels/ziplock/pkg/integrations/github"
	"github.com/matzehuels/ziplock/pkg/manifest"
	"github.com/matzehuels/ziplock/pkg/resolve"
)

// Reference is a parsed GitHub dependency.
type Reference struct {
	Owner string
	Repo  string
	Ref   string // Branch, tag or commit; empty means the default branch
}

// Pinned returns the version string recorded for a resolved reference.
func (r Reference) Pinned(sha string) string {
	return fmt.Sprintf("github:%s/%s#%s", r.Owner, r.Repo, sha)
}

func (r Reference) String() string {
	s := r.Owner + "/" + r.Repo
	if r.Ref != "" {
		s += "#" + r.Ref
	}
	return s
}

// ParseReference accepts the GitHub forms npm understands:
//
//	github:owner/repo#ref
//	owner/repo#ref
//	https://github.com/owner/repo(.git)#ref
//	git+https://github.com/owner/repo.git#ref
//	git://github.com/owner/repo.git#ref
//	git@github.com:owner/repo.git#ref
//	git+ssh://git@github.com/owner/repo.git#ref
func ParseReference(spec string) (Reference, error) {
	s, ref, _ := strings.Cut(strings.TrimSpace(spec), "#")

	var path string
	switch {
	case strings.HasPrefix(s, "github:"):
		path = strings.TrimPrefix(s, "github:")
	case strings.Contains(s, "://") || strings.HasPrefix(s, "git@"):
		u := integrations.NormalizeRepoURL(s)
		rest, ok := cutAnyPrefix(u, "https://github.com/", "http://github.com/", "https://www.github.com/")
		if !ok {
			return Reference{}, errors.New(errors.ErrCodeInvalidSpecifier, "%q is not a GitHub reference", spec)
		}
		path = strings.TrimSuffix(rest, "/")
	case !strings.Contains(s, ":") && strings.Count(s, "/") == 1 && !strings.HasPrefix(s, "@"):
		path = s
	default:
		return Reference{}, errors.New(errors.ErrCodeInvalidSpecifier, "%q is not a version range, file path or GitHub reference", spec)
	}

	owner, repo, err := ghapi.ParseRepoRef(path)
	if err != nil {
		return Reference{}, errors.Wrap(errors.ErrCodeInvalidSpecifier, err, "parse %q", spec)
	}
	if err := ghapi.ValidateRef(ref); err != nil {
		return Reference{}, errors.Wrap(errors.ErrCodeInvalidSpecifier, err, "parse %q", spec)
	}
	return Reference{Owner: owner, Repo: repo, Ref: ref}, nil
}

func cutAnyPrefix(s string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return rest, true
		}
	}
	return "", false
}

// API is the subset of [ghapi.Client] the resolver needs.
type API interface {
	ResolveCommit(ctx context.Context, owner, repo, ref string, refresh bool) (string, error)
	FetchFile(ctx context.Context, owner, repo, path, sha string) (*ghapi.FileContent, error)
}

// Resolver pins GitHub references to a commit and reads the package.json
// found there.
type Resolver struct {
	api     API
	refresh bool
}

// New returns a Resolver using api. With refresh set, branch and tag
// lookups bypass the cache.
func New(api API, refresh bool) *Resolver {
	return &Resolver{api: api, refresh: refresh}
}

// Resolve returns the version "github:owner/repo#<sha>" and the manifest
// at that commit.
func (r *Resolver) Resolve(ctx context.Context, spec string) (*resolve.Resolution, error) {
	ref, err := ParseReference(spec)
	if err != nil {
		return nil, err
	}

	sha, err := r.api.ResolveCommit(ctx, ref.Owner, ref.Repo, ref.Ref, r.refresh)
	if err != nil {
		return nil, integrations.Classify(err, "resolve %s", ref)
	}

	file, err := r.api.FetchFile(ctx, ref.Owner, ref.Repo, "package.json", sha)
	if err != nil {
		return nil, integrations.Classify(err, "fetch package.json of %s at %s", ref, sha)
	}

	m, err := manifest.Parse(file.Content)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "package.json of %s", ref)
	}
	return &resolve.Resolution{Version: ref.Pinned(sha), Manifest: m}, nil
}
