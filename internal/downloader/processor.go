package downloader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wvdl/pkg/config"
	errs "wvdl/pkg/errors"
	"wvdl/pkg/logger"
	"wvdl/pkg/storage"
	"wvdl/pkg/weverse"
)

// Status is the terminal state of a processed post
type Status int

const (
	StatusDownloaded Status = iota
	StatusSkipped
	// StatusNeedsPassword is returned for a locked post processed without a
	// password. Nothing has been fetched or written yet.
	StatusNeedsPassword
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusNeedsPassword:
		return "needs password"
	default:
		return "downloaded"
	}
}

// Outcome describes a post that was processed without error
type Outcome struct {
	Status Status
	Post   weverse.Post
	Dir    string
}

// Store is the on-disk side of processing a post
type Store interface {
	IsCommitted(t storage.Target) bool
	Prepare(t storage.Target) error
	WriteContent(t storage.Target, content string) error
	Commit(t storage.Target) error
}

// Processor takes one post from listing to a committed directory
type Processor struct {
	artists map[string]config.ArtistConfig
	api     PostAPI
	fetcher *Fetcher
	store   Store
	logger  logger.Logger
}

// NewProcessor creates a processor. artists is keyed by lower-cased
// community name and must not be modified afterwards.
func NewProcessor(artists map[string]config.ArtistConfig, api PostAPI, fetcher *Fetcher, store Store, log logger.Logger) *Processor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Processor{
		artists: artists,
		api:     api,
		fetcher: fetcher,
		store:   store,
		logger:  log,
	}
}

// targetRoot picks the download directory for the post's feed
func (p *Processor) targetRoot(post weverse.Post) (string, error) {
	if !post.Type.Known() {
		return "", errs.New(errs.ErrorTypePostType, p.api.Endpoints().WebURL(post),
			fmt.Sprintf("could not parse post type %q", string(post.Type)))
	}
	ac := p.artists[strings.ToLower(post.Community.Name)]
	if post.Type == weverse.PostTypeMoment {
		return ac.MomentsPath(), nil
	}
	return ac.PostsPath(), nil
}

// Process downloads post unless it is already on disk. A locked post with a
// nil password comes back as StatusNeedsPassword without any I/O; asking
// the user is left to the caller. A wrong password is returned as an
// ErrorTypeAuthRequired error. On any other error the scratch directory is
// left in place.
func (p *Processor) Process(ctx context.Context, post weverse.Post, password *string) (Outcome, error) {
	start := time.Now()

	root, err := p.targetRoot(post)
	if err != nil {
		return Outcome{}, err
	}
	target, err := storage.NewTarget(root, post)
	if err != nil {
		return Outcome{}, err
	}

	if p.store.IsCommitted(target) {
		return Outcome{Status: StatusSkipped, Post: post, Dir: target.Dir()}, nil
	}

	if post.Locked && password == nil {
		return Outcome{Status: StatusNeedsPassword, Post: post, Dir: target.Dir()}, nil
	}

	if post.NeedsRefetch() {
		full, err := p.fetcher.Refetch(ctx, post, password)
		if err != nil {
			return Outcome{}, err
		}
		post = full
	}

	if err := p.store.Prepare(target); err != nil {
		return Outcome{}, err
	}

	for i, photo := range post.Photos {
		if err := p.api.DownloadFile(ctx, photo.URL, target.MediaPath("img", i, photo.URL)); err != nil {
			return Outcome{}, err
		}
	}
	for i, video := range post.AttachedVideos {
		if video.URL == nil {
			continue
		}
		if err := p.api.DownloadFile(ctx, *video.URL, target.MediaPath("vid", i, *video.URL)); err != nil {
			return Outcome{}, err
		}
	}

	if err := p.store.WriteContent(target, storage.Content(p.api.Endpoints().WebURL(post), post)); err != nil {
		return Outcome{}, err
	}
	if err := p.store.Commit(target); err != nil {
		return Outcome{}, err
	}

	p.logger.DebugWithFields("post committed", map[string]interface{}{
		"post_id":  post.ID,
		"dir":      target.Dir(),
		"photos":   len(post.Photos),
		"videos":   len(post.AttachedVideos),
		"duration": time.Since(start),
	})
	return Outcome{Status: StatusDownloaded, Post: post, Dir: target.Dir()}, nil
}
