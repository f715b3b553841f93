// Package local resolves dependencies declared with the file: token.
package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/manifest"
	"github.com/matzehuels/ziplock/pkg/resolve"
)

// ManifestName is the file read from a referenced directory.
const ManifestName = "package.json"

// Resolver reads manifests from the filesystem. Relative paths are taken
// from BaseDir, normally the directory of the root manifest.
type Resolver struct {
	BaseDir string
}

// New returns a Resolver rooted at baseDir.
func New(baseDir string) *Resolver {
	return &Resolver{BaseDir: baseDir}
}

// Resolve reads the manifest spec points to. The version is the
// manifest's own version, or spec itself when the manifest declares none.
func (r *Resolver) Resolve(ctx context.Context, spec string) (*resolve.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := r.Path(spec)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", spec)
		}
		return nil, err
	}
	if info.IsDir() {
		path = filepath.Join(path, ManifestName)
	}

	m, err := manifest.ReadFile(path)
	if err != nil {
		return nil, err
	}

	version := m.Version
	if version == "" {
		version = spec
	}
	return &resolve.Resolution{Version: version, Manifest: m}, nil
}

// Path returns the filesystem path spec refers to. Everything up to and
// including the token is dropped; "~/" expands to the home directory.
func (r *Resolver) Path(spec string) (string, error) {
	_, rest, ok := strings.Cut(spec, manifest.FileToken)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidSpecifier, "%q does not contain %q", spec, manifest.FileToken)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", errors.New(errors.ErrCodeInvalidSpecifier, "%q names no path", spec)
	}

	if home, ok := strings.CutPrefix(rest, "~/"); ok {
		dir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "expand %s", rest)
		}
		return filepath.Join(dir, home), nil
	}
	if filepath.IsAbs(rest) {
		return filepath.Clean(rest), nil
	}
	return filepath.Join(r.BaseDir, rest), nil
}
