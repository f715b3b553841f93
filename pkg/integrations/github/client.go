package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/ziplock/pkg/cache"
	"github.com/matzehuels/ziplock/pkg/integrations"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// DefaultRef is used when a reference names no branch, tag or commit.
const DefaultRef = "HEAD"

// Client provides access to the GitHub API for commit lookups and file
// content. It handles HTTP requests with caching, automatic retries, and
// optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client. Pass an empty token for
// unauthenticated requests (lower rate limits) and an empty baseURL for
// [DefaultBaseURL].
func NewClient(c cache.Cache, baseURL, token string, cacheTTL time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(c, "github", cacheTTL, headers),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// ResolveCommit returns the full commit SHA that ref (branch, tag, short or
// full SHA) points at. An empty ref means the default branch.
// Branch heads move, so pass refresh to bypass a cached lookup.
func (c *Client) ResolveCommit(ctx context.Context, owner, repo, ref string, refresh bool) (string, error) {
	if ref == "" {
		ref = DefaultRef
	}
	key := fmt.Sprintf("commit:%s/%s@%s", owner, repo, ref)

	var data commitResponse
	err := c.Cached(ctx, key, refresh, &data, func() error {
		u := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, owner, repo, ref)
		if err := c.Get(ctx, u, &data); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: github ref %s/%s#%s", err, owner, repo, ref)
			}
			return err
		}
		if data.SHA == "" {
			return fmt.Errorf("github ref %s/%s#%s: empty commit sha", owner, repo, ref)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return data.SHA, nil
}

// FetchFile retrieves and decodes path at the given commit. Content at a
// commit SHA is immutable, so cached entries are always reused.
func (c *Client) FetchFile(ctx context.Context, owner, repo, path, sha string) (*FileContent, error) {
	key := fmt.Sprintf("content:%s/%s@%s:%s", owner, repo, sha, path)

	var file FileContent
	err := c.Cached(ctx, key, false, &file, func() error {
		return c.fetchFile(ctx, owner, repo, path, sha, &file)
	})
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *Client) fetchFile(ctx context.Context, owner, repo, path, sha string, file *FileContent) error {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", c.baseURL, owner, repo, path, url.QueryEscape(sha))

	var resp apiContentResponse
	if err := c.Get(ctx, u, &resp); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: %s in github repo %s/%s@%s", err, path, owner, repo, sha)
		}
		return err
	}
	if resp.Type != "" && resp.Type != "file" {
		return fmt.Errorf("%s in github repo %s/%s is a %s, not a file", path, owner, repo, resp.Type)
	}

	content := []byte(resp.Content)
	if resp.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
		if err != nil {
			return fmt.Errorf("decode content: %w", err)
		}
		content = decoded
	}

	*file = FileContent{
		Path:    resp.Path,
		SHA:     resp.SHA,
		Size:    resp.Size,
		Content: content,
	}
	return nil
}
