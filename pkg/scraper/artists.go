package scraper

import (
	"context"
	"strings"

	errs "wvdl/pkg/errors"
)

// ArtistDirectory maps lower-cased community names to ids. It is built once
// before any feed is listed and never modified, so lookups need no locking.
type ArtistDirectory struct {
	ids map[string]int64
}

// ResolveArtists fetches the community list and freezes it into a directory
func ResolveArtists(ctx context.Context, client CommunityLister) (*ArtistDirectory, error) {
	communities, err := client.FetchCommunities(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(communities))
	for _, c := range communities {
		ids[strings.ToLower(c.Name)] = c.ID
	}
	return &ArtistDirectory{ids: ids}, nil
}

// Lookup returns the community id of name
func (d *ArtistDirectory) Lookup(name string) (int64, error) {
	id, ok := d.ids[strings.ToLower(name)]
	if !ok {
		return 0, errs.New(errs.ErrorTypeArtistLookup, name, "could not find artist in community list")
	}
	return id, nil
}

// Len returns the number of known communities
func (d *ArtistDirectory) Len() int {
	return len(d.ids)
}
