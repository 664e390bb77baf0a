package scraper

import (
	"context"
	"fmt"

	errs "wvdl/pkg/errors"
	"wvdl/pkg/logger"
	"wvdl/pkg/weverse"
)

// Paginator walks a feed listing page by page
type Paginator struct {
	client FeedLister
	logger logger.Logger
}

// NewPaginator creates a paginator
func NewPaginator(client FeedLister, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Paginator{client: client, logger: log}
}

// Paginate returns the posts of one feed in server order. A nil limit lists
// the whole feed; a limit <= 0 lists nothing and makes no request. Otherwise
// at most *limit posts are returned.
func (p *Paginator) Paginate(ctx context.Context, artistID int64, feed weverse.Feed, limit *int) ([]weverse.Post, error) {
	if limit != nil && *limit <= 0 {
		return nil, nil
	}

	var (
		posts []weverse.Post
		from  *int64
		pages int
	)
	for {
		pageSize := weverse.MaxPageSize
		if limit != nil {
			pageSize = max(1, *limit-len(posts))
		}

		page, err := p.client.FetchFeedPage(ctx, artistID, feed, pageSize, from)
		if err != nil {
			return nil, err
		}
		pages++
		posts = append(posts, page.Posts...)

		if page.IsEnded || (limit != nil && len(posts) >= *limit) {
			break
		}
		if page.LastID == nil {
			return nil, errs.New(errs.ErrorTypeMissingCursor,
				fmt.Sprintf("artist %d %s feed", artistID, feed), "lastId not found")
		}
		if len(page.Posts) == 0 && from != nil && *from == *page.LastID {
			p.logger.WarnWithFields("feed returned an empty page without advancing, stopping", map[string]interface{}{
				"artist_id": artistID,
				"feed":      feed.String(),
				"cursor":    *from,
			})
			break
		}
		from = page.LastID
	}

	if limit != nil && len(posts) > *limit {
		posts = posts[:*limit]
	}

	p.logger.DebugWithFields("feed listed", map[string]interface{}{
		"artist_id": artistID,
		"feed":      feed.String(),
		"pages":     pages,
		"posts":     len(posts),
	})
	return posts, nil
}
