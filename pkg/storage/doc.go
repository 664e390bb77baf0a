// Package storage lays posts out on disk.
//
// Each post is committed as one directory, <root>/<YYYYMMDD>-<id>-<author>.
// Files are first written to a sibling "<dir>.temp" directory which is
// renamed into place once every file is present, so a directory without the
// suffix is always complete. A scratch directory left by an interrupted run
// is discarded and rebuilt on the next attempt.
package storage
