// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches packuments (the per-package version index) from the
// npm registry (https://registry.npmjs.org) or any compatible mirror.
// Requests ask for the abbreviated install format, which keeps only the
// fields needed to resolve dependencies.
//
// # Usage
//
//	client := npm.NewClient(cache, "", 24*time.Hour)
//
//	doc, err := client.FetchPackument(ctx, "express", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(doc.Latest())
//	fmt.Println(doc.Versions[doc.Latest()].Dependencies)
//
// # Caching
//
// Responses are cached to reduce load on the registry. The cache TTL is set
// when creating the client. Pass refresh=true to bypass the cache.
//
// Version selection is left to the caller.
package npm
