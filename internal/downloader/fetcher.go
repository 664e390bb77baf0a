package downloader

import (
	"context"
	"errors"
	"fmt"

	"wvdl/pkg/logger"
	"wvdl/pkg/weverse"
)

// ErrPasswordDeclined is returned when the user leaves a password prompt
// empty.
var ErrPasswordDeclined = errors.New("password declined")

// PostAPI is the part of the Weverse client used to process a post
type PostAPI interface {
	FetchPost(ctx context.Context, post weverse.Post, password *string) (weverse.Post, error)
	DownloadFile(ctx context.Context, url, path string) error
	Endpoints() weverse.Endpoints
}

// Prompter asks the user one question and returns the answer
type Prompter interface {
	Prompt(msg string) (string, error)
}

// Fetcher replaces incomplete listing posts with their full detail and asks
// the user for the passwords of locked posts.
type Fetcher struct {
	api      PostAPI
	prompter Prompter
	logger   logger.Logger
}

// NewFetcher creates a fetcher. prompter is only used by AskPassword.
func NewFetcher(api PostAPI, prompter Prompter, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{api: api, prompter: prompter, logger: log}
}

// Refetch returns the full detail of post. password is sent for locked
// posts and ignored otherwise.
func (f *Fetcher) Refetch(ctx context.Context, post weverse.Post, password *string) (weverse.Post, error) {
	if !post.Locked {
		return f.api.FetchPost(ctx, post, nil)
	}
	return f.api.FetchPost(ctx, post, password)
}

// AskPassword prompts for the password of a locked post. An empty answer
// yields ErrPasswordDeclined. It makes no network requests.
func (f *Fetcher) AskPassword(post weverse.Post) (string, error) {
	url := f.api.Endpoints().WebURL(post)
	password, err := f.prompter.Prompt(fmt.Sprintf("Password required for %s (leave empty to skip):", url))
	if err != nil {
		return "", err
	}
	if password == "" {
		f.logger.DebugWithFields("password prompt left empty", map[string]interface{}{
			"post_id": post.ID,
		})
		return "", ErrPasswordDeclined
	}
	return password, nil
}
