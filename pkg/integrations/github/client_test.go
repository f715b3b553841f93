package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/ziplock/pkg/cache"
	zerrors "github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/integrations"
)

const testSHA = "0123456789abcdef0123456789abcdef01234567"

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/repos/owner/repo/commits/HEAD", "/repos/owner/repo/commits/v1.0.0":
			json.NewEncoder(w).Encode(commitResponse{SHA: testSHA})
		case "/repos/owner/repo/contents/package.json":
			if r.URL.Query().Get("ref") != testSHA {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(apiContentResponse{
				Path:     "package.json",
				Type:     "file",
				Encoding: "base64",
				Content:  base64.StdEncoding.EncodeToString([]byte(`{"name":"repo","version":"1.0.0"}`)),
			})
		case "/repos/owner/repo/contents/lib":
			json.NewEncoder(w).Encode(apiContentResponse{Path: "lib", Type: "dir"})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClient_ResolveCommit(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	c := NewClient(nil, server.URL, "", time.Hour)

	tests := []struct {
		ref     string
		wantErr error
	}{
		{ref: ""},
		{ref: "v1.0.0"},
		{ref: "missing", wantErr: integrations.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			sha, err := c.ResolveCommit(context.Background(), "owner", "repo", tt.ref, false)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCommit: %v", err)
			}
			if sha != testSHA {
				t.Errorf("sha = %q, want %q", sha, testSHA)
			}
		})
	}
}

func TestClient_FetchFile(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	c := NewClient(nil, server.URL, "", time.Hour)

	file, err := c.FetchFile(context.Background(), "owner", "repo", "package.json", testSHA)
	if err != nil {
		t.Fatalf("FetchFile: %v", err)
	}
	if string(file.Content) != `{"name":"repo","version":"1.0.0"}` {
		t.Errorf("content = %s", file.Content)
	}

	if _, err := c.FetchFile(context.Background(), "owner", "repo", "lib", testSHA); err == nil {
		t.Error("expected error for a directory")
	}
	if _, err := c.FetchFile(context.Background(), "owner", "repo", "package.json", "deadbeef"); !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestClient_FetchFileCached(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(fc, server.URL, "", time.Hour)

	for range 3 {
		if _, err := c.FetchFile(context.Background(), "owner", "repo", "package.json", testSHA); err != nil {
			t.Fatalf("FetchFile: %v", err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestClient_Authorization(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(commitResponse{SHA: testSHA})
	}))
	defer server.Close()

	c := NewClient(nil, server.URL, "secret", time.Hour)
	if _, err := c.ResolveCommit(context.Background(), "owner", "repo", "", true); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		in        string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{in: "owner/repo", wantOwner: "owner", wantRepo: "repo"},
		{in: "owner/repo.git", wantOwner: "owner", wantRepo: "repo"},
		{in: "my-org/my.lib_v2", wantOwner: "my-org", wantRepo: "my.lib_v2"},
		{in: "owner", wantErr: true},
		{in: "-owner/repo", wantErr: true},
		{in: "owner/re po", wantErr: true},
		{in: "owner/repo/extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, repo, err := ParseRepoRef(tt.in)
			if tt.wantErr {
				if !zerrors.Is(err, zerrors.ErrCodeInvalidSpecifier) {
					t.Errorf("error = %v, want INVALID_SPECIFIER", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRepoRef: %v", err)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("got %s/%s, want %s/%s", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestValidateRef(t *testing.T) {
	for _, ref := range []string{"", "main", "v1.2.3", "feature/x", testSHA} {
		if err := ValidateRef(ref); err != nil {
			t.Errorf("ValidateRef(%q) = %v", ref, err)
		}
	}
	for _, ref := range []string{"a b", "a..b", "x:y", "a~1"} {
		if err := ValidateRef(ref); err == nil {
			t.Errorf("ValidateRef(%q) should fail", ref)
		}
	}
}
