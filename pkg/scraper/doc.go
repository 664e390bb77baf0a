// Package scraper runs a download: it resolves the configured artists to
// community ids, lists each artist's feeds concurrently and feeds every
// listed post to the downloader's worker pool, reporting one status line per
// post.
package scraper
