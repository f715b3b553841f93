package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/manifest"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveDirectory(t *testing.T) {
	base := t.TempDir()
	writeManifest(t, filepath.Join(base, "libs", "util"), `{
		"name": "util",
		"version": "0.3.0",
		"dependencies": {"lodash": "^4.17.0"}
	}`)

	r := New(base)
	res, err := r.Resolve(context.Background(), "file:libs/util")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Version != "0.3.0" {
		t.Errorf("Version = %q, want 0.3.0", res.Version)
	}
	spec, ok := res.Manifest.Group(manifest.Production)["lodash"]
	if !ok || spec.Raw != "^4.17.0" || spec.Kind != manifest.KindRange {
		t.Errorf("lodash = %+v", spec)
	}
}

func TestResolveFileWithoutVersion(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "custom.json")
	if err := os.WriteFile(path, []byte(`{"name":"custom"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := New(base).Resolve(context.Background(), "file:custom.json")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Version != "file:custom.json" {
		t.Errorf("Version = %q, want the specifier", res.Version)
	}
}

func TestResolveAbsoluteAndPrefixed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pkg")
	writeManifest(t, dir, `{"name":"pkg","version":"1.0.0"}`)

	// The token may appear after other text, as in "link:file:..."
	res, err := New("/nowhere").Resolve(context.Background(), "local+file:"+dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Version != "1.0.0" {
		t.Errorf("Version = %q", res.Version)
	}
}

func TestResolveErrors(t *testing.T) {
	base := t.TempDir()
	writeManifest(t, filepath.Join(base, "broken"), `{"dependencies": []}`)

	tests := []struct {
		spec string
		want errors.Code
	}{
		{"file:missing", errors.ErrCodeFileNotFound},
		{"file:", errors.ErrCodeInvalidSpecifier},
		{"^1.0.0", errors.ErrCodeInvalidSpecifier},
		{"file:broken", errors.ErrCodeInvalidManifest},
	}

	r := New(base)
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestResolveEmptyDirectory(t *testing.T) {
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := New(base).Resolve(context.Background(), "file:empty")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestResolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(t.TempDir()).Resolve(ctx, "file:x"); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	r := New("/base")
	tests := map[string]string{
		"file:../sibling":  "/sibling",
		"file:./a/b":       "/base/a/b",
		"file:/abs/x/../y": "/abs/y",
		"file:~/src/pkg":   filepath.Join(home, "src", "pkg"),
	}
	for spec, want := range tests {
		got, err := r.Path(spec)
		if err != nil {
			t.Errorf("Path(%q): %v", spec, err)
			continue
		}
		if got != filepath.FromSlash(want) && got != want {
			t.Errorf("Path(%q) = %q, want %q", spec, got, want)
		}
	}
}
