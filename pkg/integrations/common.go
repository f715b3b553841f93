package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	zerrors "github.com/matzehuels/ziplock/pkg/errors"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"git+ssh://git@github.com/", "https://github.com/",
	"ssh://git@github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, ssh:// and git+ prefixes, and removes .git suffixes.
// A #fragment is preserved. Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s, frag, hasFrag := strings.Cut(strings.TrimSpace(raw), "#")
	s = repoURLReplacer.Replace(s)
	s = strings.TrimPrefix(s, "git+")
	s = strings.TrimSuffix(s, ".git")
	if hasFrag {
		s += "#" + frag
	}
	return s
}

// Classify converts a client error into a coded error: not-found becomes
// PACKAGE_NOT_FOUND, rate limiting RATE_LIMITED and transport failures
// NETWORK_ERROR. Errors that already carry a code are returned as is.
func Classify(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	var rl *zerrors.RateLimitedError
	switch {
	case errors.As(err, &rl):
		return zerrors.Wrap(zerrors.ErrCodeRateLimited, err, "%s", msg)
	case errors.Is(err, ErrNotFound):
		return zerrors.Wrap(zerrors.ErrCodePackageNotFound, err, "%s", msg)
	case errors.Is(err, ErrNetwork):
		return zerrors.Wrap(zerrors.ErrCodeNetwork, err, "%s", msg)
	case zerrors.GetCode(err) != "":
		return err
	default:
		return zerrors.Wrap(zerrors.ErrCodeInternal, err, "%s", msg)
	}
}
