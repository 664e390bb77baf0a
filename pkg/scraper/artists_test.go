package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "wvdl/pkg/errors"
	"wvdl/pkg/weverse"
)

type staticCommunities struct {
	communities []weverse.Community
	err         error
}

func (s staticCommunities) FetchCommunities(ctx context.Context) ([]weverse.Community, error) {
	return s.communities, s.err
}

func TestResolveArtists(t *testing.T) {
	dir, err := ResolveArtists(context.Background(), staticCommunities{communities: []weverse.Community{
		{ID: 1, Name: "BTS"},
		{ID: 2, Name: "Dreamcatcher"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, dir.Len())

	id, err := dir.Lookup("bts")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = dir.Lookup("DREAMCATCHER")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	_, err = dir.Lookup("unknown")
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeArtistLookup))
	assert.Contains(t, err.Error(), "unknown")
}

func TestResolveArtistsError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ResolveArtists(context.Background(), staticCommunities{err: boom})
	assert.ErrorIs(t, err, boom)
}
