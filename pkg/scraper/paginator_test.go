package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "wvdl/pkg/errors"
	"wvdl/pkg/logger"
	"wvdl/pkg/weverse"
)

type pageRequest struct {
	pageSize int
	from     *int64
}

// scriptedFeed serves a feed of total posts with ids total..1, honouring
// pageSize but capping pages at maxPage like the real API.
type scriptedFeed struct {
	total    int
	maxPage  int
	requests []pageRequest
	err      error
}

func (f *scriptedFeed) FetchFeedPage(ctx context.Context, artistID int64, feed weverse.Feed, pageSize int, from *int64) (*weverse.PostsPage, error) {
	f.requests = append(f.requests, pageRequest{pageSize: pageSize, from: from})
	if f.err != nil {
		return nil, f.err
	}

	next := int64(f.total)
	if from != nil {
		next = *from - 1
	}
	n := pageSize
	if f.maxPage > 0 && n > f.maxPage {
		n = f.maxPage
	}

	page := &weverse.PostsPage{}
	for i := 0; i < n && next > 0; i++ {
		page.Posts = append(page.Posts, weverse.Post{ID: next})
		next--
	}
	if next <= 0 {
		page.IsEnded = true
	}
	if len(page.Posts) > 0 {
		last := page.Posts[len(page.Posts)-1].ID
		page.LastID = &last
	}
	return page, nil
}

func intPtr(v int) *int { return &v }

func ids(posts []weverse.Post) []int64 {
	out := make([]int64, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestPaginateUnlimitedReadsUntilEnded(t *testing.T) {
	feed := &scriptedFeed{total: 250}
	p := NewPaginator(feed, logger.NewNopLogger())

	posts, err := p.Paginate(context.Background(), 1, weverse.FeedArtist, nil)
	require.NoError(t, err)
	require.Len(t, posts, 250)
	assert.Equal(t, int64(250), posts[0].ID)
	assert.Equal(t, int64(1), posts[249].ID)

	require.Len(t, feed.requests, 3)
	for _, r := range feed.requests {
		assert.Equal(t, weverse.MaxPageSize, r.pageSize)
	}
	assert.Nil(t, feed.requests[0].from)
	assert.Equal(t, int64(151), *feed.requests[1].from)
	assert.Equal(t, int64(51), *feed.requests[2].from)
}

func TestPaginateLimitShorterThanFeed(t *testing.T) {
	feed := &scriptedFeed{total: 100, maxPage: 2}
	p := NewPaginator(feed, logger.NewNopLogger())

	posts, err := p.Paginate(context.Background(), 1, weverse.FeedArtist, intPtr(5))
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 99, 98, 97, 96}, ids(posts))

	var sizes []int
	for _, r := range feed.requests {
		sizes = append(sizes, r.pageSize)
	}
	assert.Equal(t, []int{5, 3, 1}, sizes)
}

func TestPaginateLimitLongerThanFeed(t *testing.T) {
	feed := &scriptedFeed{total: 3}
	p := NewPaginator(feed, logger.NewNopLogger())

	posts, err := p.Paginate(context.Background(), 1, weverse.FeedMoments, intPtr(10))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids(posts))
	assert.Len(t, feed.requests, 1)
}

func TestPaginateLimitExactlyOnePage(t *testing.T) {
	feed := &scriptedFeed{total: 10}
	p := NewPaginator(feed, logger.NewNopLogger())

	posts, err := p.Paginate(context.Background(), 1, weverse.FeedArtist, intPtr(3))
	require.NoError(t, err)
	assert.Len(t, posts, 3)
	assert.Len(t, feed.requests, 1, "the limit is reached on the first page")
}

func TestPaginateDisabledFeed(t *testing.T) {
	for _, limit := range []int{0, -1} {
		feed := &scriptedFeed{total: 10}
		p := NewPaginator(feed, logger.NewNopLogger())

		posts, err := p.Paginate(context.Background(), 1, weverse.FeedArtist, intPtr(limit))
		require.NoError(t, err)
		assert.Empty(t, posts)
		assert.Empty(t, feed.requests)
	}
}

// overDelivering ignores pageSize
type overDelivering struct{}

func (overDelivering) FetchFeedPage(ctx context.Context, artistID int64, feed weverse.Feed, pageSize int, from *int64) (*weverse.PostsPage, error) {
	last := int64(1)
	return &weverse.PostsPage{
		Posts:  []weverse.Post{{ID: 5}, {ID: 4}, {ID: 3}, {ID: 2}, {ID: 1}},
		LastID: &last,
	}, nil
}

func TestPaginateTruncatesOverDelivery(t *testing.T) {
	p := NewPaginator(overDelivering{}, logger.NewNopLogger())
	posts, err := p.Paginate(context.Background(), 1, weverse.FeedArtist, intPtr(2))
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4}, ids(posts))
}

type pagesFeed struct {
	pages []*weverse.PostsPage
	calls int
}

func (f *pagesFeed) FetchFeedPage(ctx context.Context, artistID int64, feed weverse.Feed, pageSize int, from *int64) (*weverse.PostsPage, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestPaginateMissingCursor(t *testing.T) {
	feed := &pagesFeed{pages: []*weverse.PostsPage{
		{Posts: []weverse.Post{{ID: 1}}, IsEnded: false},
	}}
	p := NewPaginator(feed, logger.NewNopLogger())

	_, err := p.Paginate(context.Background(), 1, weverse.FeedArtist, nil)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeMissingCursor))
}

func TestPaginateStopsOnStuckCursor(t *testing.T) {
	cursor := int64(9)
	log := logger.NewTestLogger()
	feed := &pagesFeed{pages: []*weverse.PostsPage{
		{Posts: []weverse.Post{{ID: 10}}, LastID: &cursor},
		{LastID: &cursor},
	}}
	p := NewPaginator(feed, log)

	posts, err := p.Paginate(context.Background(), 1, weverse.FeedArtist, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, ids(posts))
	assert.Equal(t, 2, feed.calls)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 1)
}

func TestPaginateRequestError(t *testing.T) {
	boom := errs.New(errs.ErrorTypePagination, "url", "unexpected response")
	feed := &scriptedFeed{total: 10, err: boom}
	p := NewPaginator(feed, logger.NewNopLogger())

	posts, err := p.Paginate(context.Background(), 1, weverse.FeedArtist, nil)
	assert.Nil(t, posts)
	assert.True(t, errors.Is(err, boom))
}
