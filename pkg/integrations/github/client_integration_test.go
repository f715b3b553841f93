//go:build integration

package github

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestResolveCommit_Integration(t *testing.T) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		t.Skip("GITHUB_TOKEN not set, skipping integration test")
	}

	client := NewClient(nil, "", token, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		owner   string
		repo    string
		wantErr bool
	}{
		{"expressjs/express", "expressjs", "express", false},
		{"nonexistent", "nonexistent-owner-12345", "nonexistent-repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sha, err := client.ResolveCommit(ctx, tt.owner, tt.repo, "", true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveCommit(%q, %q) error = %v, wantErr %v", tt.owner, tt.repo, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(sha) != 40 {
				t.Errorf("sha = %q, want 40 hex chars", sha)
			}

			file, err := client.FetchFile(ctx, tt.owner, tt.repo, "package.json", sha)
			if err != nil {
				t.Fatalf("FetchFile: %v", err)
			}
			if len(file.Content) == 0 {
				t.Error("package.json should not be empty")
			}
		})
	}
}
