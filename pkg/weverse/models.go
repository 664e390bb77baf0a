package weverse

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PostType is the feed a post belongs to. Only PostTypeNormal and
// PostTypeMoment are recognized; any other wire value decodes to a PostType
// that reports Known() == false and keeps the raw tag for diagnostics.
type PostType string

const (
	PostTypeNormal PostType = "NORMAL"
	PostTypeMoment PostType = "TO_FANS"
)

// UnmarshalJSON normalizes the wire tag, which the API does not send in a
// consistent case.
func (t *PostType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("post type: %w", err)
	}
	switch strings.ToUpper(raw) {
	case string(PostTypeNormal):
		*t = PostTypeNormal
	case string(PostTypeMoment):
		*t = PostTypeMoment
	default:
		*t = PostType(raw)
	}
	return nil
}

// Known reports whether t is one of the two recognized feeds.
func (t PostType) Known() bool {
	return t == PostTypeNormal || t == PostTypeMoment
}

// Community is a creator's community
type Community struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CommunityUser is the author of a post
type CommunityUser struct {
	ID       int64  `json:"id"`
	Nickname string `json:"profileNickname"`
}

// Photo is one image attached to a post
type Photo struct {
	ID  int64  `json:"id"`
	URL string `json:"orgImgUrl"`
}

// Video is one attached video. URL is only resolved by the post detail
// endpoint; listings leave it nil.
type Video struct {
	URL *string `json:"videoUrl"`
}

// Post is a post as returned by the API. Posts are treated as values: a
// refetched post replaces the listing copy rather than being merged into it.
type Post struct {
	ID             int64         `json:"id"`
	CommunityUser  CommunityUser `json:"communityUser"`
	Community      Community     `json:"community"`
	CommunityTabID int64         `json:"communityTabId"`
	Type           PostType      `json:"type"`
	Body           *string       `json:"body"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
	Photos         []Photo       `json:"photos"`
	AttachedVideos []Video       `json:"attachedVideos"`
	Locked         bool          `json:"isLocked"`
}

// Created parses CreatedAt. Parsing is deferred to the caller so one bad
// timestamp fails a single post instead of a whole page.
func (p Post) Created() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("post %d: invalid createdAt %q: %w", p.ID, p.CreatedAt, err)
	}
	return ts, nil
}

// NeedsRefetch reports whether the listing copy is incomplete: locked posts
// hide their content and video URLs are only resolved by the detail endpoint.
func (p Post) NeedsRefetch() bool {
	return p.Locked || len(p.AttachedVideos) > 0
}

// BodyText returns the body, or "" when the post has none.
func (p Post) BodyText() string {
	if p.Body == nil {
		return ""
	}
	return *p.Body
}

// PostsPage is one page of a feed listing
type PostsPage struct {
	Posts   []Post `json:"posts"`
	IsEnded bool   `json:"isEnded"`
	LastID  *int64 `json:"lastId"`
}

// CommunitiesResponse is the body of the community info endpoint
type CommunitiesResponse struct {
	Communities []Community `json:"communities"`
}
