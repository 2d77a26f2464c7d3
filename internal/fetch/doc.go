// Package fetch loads job posting pages for scanning.
//
// A target is either an http(s) URL, which is downloaded with a size limit
// and optional per-host headers, or a path to a saved page on disk. Glob
// expands patterns such as "saved/**/*.html" into file targets.
//
// # Usage
//
//	fetcher := fetch.New(fetch.WithUserAgent(cfg.UserAgent))
//	page, err := fetcher.Fetch(ctx, "https://jobs.example.com/posting/42")
package fetch
