// Package integrations provides the HTTP plumbing shared by the npm registry
// and GitHub clients in [npm] and [github].
//
// # Client Pattern
//
// Each upstream client embeds [Client] and wraps its fetches in
// [Client.Cached]:
//
//	var doc packument
//	err := c.Cached(ctx, name, refresh, &doc, func() error {
//		return c.Get(ctx, c.baseURL+"/"+escaped, &doc)
//	})
//
// [Client] handles:
//   - default headers and a request timeout
//   - status mapping: 404 becomes [ErrNotFound], 5xx a retryable [ErrNetwork],
//     429 (and GitHub's exhausted-quota 403) an [errors.RateLimitedError]
//   - response caching in any [cache.Cache] under a per-client namespace
//   - retry with exponential backoff for transient failures
//   - HTTP and cache hooks from [observability]
//
// [npm]: github.com/matzehuels/ziplock/pkg/integrations/npm
// [github]: github.com/matzehuels/ziplock/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/ziplock/pkg/cache.Cache
// [errors.RateLimitedError]: github.com/matzehuels/ziplock/pkg/errors.RateLimitedError
// [observability]: github.com/matzehuels/ziplock/pkg/observability
package integrations
