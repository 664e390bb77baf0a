package scraper

import (
	"context"

	"wvdl/internal/downloader"
	"wvdl/pkg/weverse"
)

// CommunityLister resolves community names to ids
type CommunityLister interface {
	FetchCommunities(ctx context.Context) ([]weverse.Community, error)
}

// FeedLister fetches one page of a feed listing
type FeedLister interface {
	FetchFeedPage(ctx context.Context, artistID int64, feed weverse.Feed, pageSize int, from *int64) (*weverse.PostsPage, error)
}

// WeverseClient defines the API operations used by a run
type WeverseClient interface {
	CommunityLister
	FeedLister
	downloader.PostAPI
}
