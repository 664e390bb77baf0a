package weverse

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// APIBaseURL is the base URL of the web API
	APIBaseURL = "https://weversewebapi.weverse.io/wapi/v1"

	// WebBaseURL is the base URL of the public site, used for post links
	WebBaseURL = "https://weverse.io"

	// MaxPageSize is the page size requested when a feed has no recency limit
	MaxPageSize = 100
)

// Feed selects one of a creator's post listings
type Feed int

const (
	FeedArtist Feed = iota
	FeedMoments
)

func (f Feed) String() string {
	switch f {
	case FeedArtist:
		return "artist"
	case FeedMoments:
		return "moments"
	default:
		return "feed(" + strconv.Itoa(int(f)) + ")"
	}
}

// Endpoints builds request URLs. The zero value is not usable; use
// DefaultEndpoints or set both bases (tests point them at httptest servers).
type Endpoints struct {
	API string
	Web string
}

// DefaultEndpoints returns the production endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{API: APIBaseURL, Web: WebBaseURL}
}

// CommunitiesURL lists every community with its id
func (e Endpoints) CommunitiesURL() string {
	return e.api("/communities/info")
}

// FeedURL constructs the listing URL for one page of a feed. from is the
// cursor returned as lastId by the previous page, nil for the first page.
func (e Endpoints) FeedURL(artistID int64, feed Feed, pageSize int, from *int64) string {
	var path string
	switch feed {
	case FeedMoments:
		path = fmt.Sprintf("/stream/community/%d/toFans", artistID)
	default:
		path = fmt.Sprintf("/communities/%d/posts/artistTab", artistID)
	}

	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(pageSize))
	if from != nil {
		params.Set("from", strconv.FormatInt(*from, 10))
	}
	return e.api(path) + "?" + params.Encode()
}

// PostURL is the detail endpoint for one post
func (e Endpoints) PostURL(communityID, postID int64) string {
	return e.api(fmt.Sprintf("/communities/%d/posts/%d", communityID, postID))
}

// WebURL is the human-facing link to a post
func (e Endpoints) WebURL(p Post) string {
	return fmt.Sprintf("%s/%s/artist/%d", strings.TrimRight(e.Web, "/"), strings.ToLower(p.Community.Name), p.ID)
}

func (e Endpoints) api(path string) string {
	return strings.TrimRight(e.API, "/") + path
}
