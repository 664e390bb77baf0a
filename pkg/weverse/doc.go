// Package weverse is the HTTP client for the Weverse web API: community
// lookup, paginated feed listings, post detail (including password-locked
// posts) and media downloads.
package weverse
