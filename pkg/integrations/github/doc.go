// Package github provides an HTTP client for the GitHub REST API.
//
// # Overview
//
// The client resolves git refs to commit SHAs and fetches file content at a
// commit. Together these pin a GitHub dependency to an exact revision and
// read its package.json.
//
// # Usage
//
//	client := github.NewClient(cache, "", token, 24*time.Hour)
//
//	sha, err := client.ResolveCommit(ctx, "expressjs", "express", "v5.0.0", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	file, err := client.FetchFile(ctx, "expressjs", "express", "package.json", sha)
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour.
//
// # Caching
//
// Commit lookups are cached for the configured TTL; pass refresh=true to
// re-read a moving branch head. File content is keyed by commit SHA and is
// reused indefinitely.
package github
