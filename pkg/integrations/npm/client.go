package npm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/ziplock/pkg/cache"
	zerrors "github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/integrations"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// abbreviatedAccept requests the install-only packument, which carries
// every version's dependency maps without readmes or maintainers.
const abbreviatedAccept = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"

// Packument is the registry document describing every published version
// of a package.
type Packument struct {
	Name     string                 `json:"name"`
	DistTags map[string]string      `json:"dist-tags"`
	Versions map[string]VersionInfo `json:"versions"`
}

// Latest returns the version tagged "latest", if any.
func (p *Packument) Latest() string {
	return p.DistTags["latest"]
}

// VersionList returns all published version strings in no particular order.
func (p *Packument) VersionList() []string {
	out := make([]string, 0, len(p.Versions))
	for v := range p.Versions {
		out = append(out, v)
	}
	return out
}

// VersionInfo is a single published version of a package.
type VersionInfo struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
	OptionalDependencies map[string]string `json:"optionalDependencies,omitempty"`
	Deprecated           string            `json:"deprecated,omitempty"`
}

// Client fetches packuments from an npm-compatible registry.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a registry client. An empty baseURL uses [DefaultRegistry].
func NewClient(c cache.Cache, baseURL string, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultRegistry
	}
	return &Client{
		Client:  integrations.NewClient(c, "npm", cacheTTL, map[string]string{"Accept": abbreviatedAccept}),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchPackument retrieves the packument for name.
// If refresh is true, cached data is bypassed.
func (c *Client) FetchPackument(ctx context.Context, name string, refresh bool) (*Packument, error) {
	if err := zerrors.ValidateNpmPackageName(name); err != nil {
		return nil, err
	}

	var doc Packument
	err := c.Cached(ctx, "packument:"+name, refresh, &doc, func() error {
		return c.fetch(ctx, name, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) fetch(ctx context.Context, name string, doc *Packument) error {
	if err := c.Get(ctx, c.baseURL+"/"+EscapeName(name), doc); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, name)
		}
		return err
	}
	if len(doc.Versions) == 0 {
		return fmt.Errorf("%w: npm package %s has no published versions", integrations.ErrNotFound, name)
	}
	return nil
}

// EscapeName encodes a package name as a single registry path segment.
// Scoped names keep their "@" and escape the slash: @types/node becomes
// @types%2Fnode.
func EscapeName(name string) string {
	return url.PathEscape(name)
}
