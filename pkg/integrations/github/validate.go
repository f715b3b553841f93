package github

import (
	"regexp"
	"strings"

	"github.com/matzehuels/ziplock/pkg/errors"
)

var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
	// Refs: no whitespace, no "..", no control characters
	validRef = regexp.MustCompile(`^[^\s~^:?*\[\\]+$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New(errors.ErrCodeInvalidSpecifier, "github owner is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New(errors.ErrCodeInvalidSpecifier, "invalid github owner %q", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return errors.New(errors.ErrCodeInvalidSpecifier, "github repo is required")
	}
	if !validRepo.MatchString(repo) || repo == "." || repo == ".." {
		return errors.New(errors.ErrCodeInvalidSpecifier, "invalid github repo %q", repo)
	}
	return nil
}

// ValidateRef validates a branch, tag or commit name. Empty is allowed and
// means the default branch.
func ValidateRef(ref string) error {
	if ref == "" {
		return nil
	}
	if !validRef.MatchString(ref) || strings.Contains(ref, "..") {
		return errors.New(errors.ErrCodeInvalidSpecifier, "invalid git ref %q", ref)
	}
	return nil
}

// ParseRepoRef parses an "owner/repo" string (optionally ending in .git)
// and validates both parts.
func ParseRepoRef(ref string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(ref, "/")
	if !ok {
		return "", "", errors.New(errors.ErrCodeInvalidSpecifier, "invalid repo %q: use owner/repo", ref)
	}
	repo = strings.TrimSuffix(repo, ".git")
	if err := ValidateOwner(owner); err != nil {
		return "", "", err
	}
	if err := ValidateRepo(repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}
