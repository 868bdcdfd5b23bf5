package provider

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dmaslov/media-scrape/app/retry"
)

const flickrDefaultEndpoint = "https://www.flickr.com/services/feeds/photos_public.gne"

var _ ProviderInterface = (*Flickr)(nil)

// Flickr searches the public photo feed by tags. The feed needs no API key
// and returns at most 20 entries per request.
type Flickr struct {
	endpoint     string
	userAgent    string
	httpClient   *http.Client
	timeout      time.Duration
	policy       retry.Policy
	gofeedParser *gofeed.Parser
}

func NewFlickr(httpClient *http.Client, userAgent string, timeout time.Duration) *Flickr {
	return &Flickr{
		endpoint:     flickrDefaultEndpoint,
		userAgent:    userAgent,
		httpClient:   httpClient,
		timeout:      timeout,
		policy:       retry.DefaultPolicy(),
		gofeedParser: gofeed.NewParser(),
	}
}

func (f *Flickr) Name() string {
	return "Flickr"
}

func (f *Flickr) Supports(mediaType MediaType) bool {
	return mediaType == MediaTypeImage
}

func (f *Flickr) Search(ctx context.Context, query Query) ([]Item, error) {
	params := url.Values{}
	params.Set("format", "atom")
	params.Set("tags", strings.Join(strings.Fields(strings.ToLower(query.Topic)), ","))

	feedURL := fmt.Sprintf("%s?%s", f.endpoint, params.Encode())

	data, err := getBytes(ctx, f.httpClient, f.policy, f.timeout, feedURL, nil, f.userAgent)
	if err != nil {
		return nil, fmt.Errorf("flickr feed fetch failed: %w", err)
	}

	feed, err := f.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse flickr feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if len(items) >= query.MaxItems {
			break
		}

		item := Item{
			Title:     cmp.Or(entry.Title, query.Topic, "Untitled"),
			Provider:  f.Name(),
			MediaType: MediaTypeImage,
			SourceURL: entry.Link,
		}

		if len(entry.Enclosures) > 0 && entry.Enclosures[0] != nil {
			item.ThumbnailURL = entry.Enclosures[0].URL
		}

		if entry.PublishedParsed != nil {
			item.PublishedDate = entry.PublishedParsed.UTC().Format(time.RFC3339)
		}

		if entry.Author != nil && entry.Author.Name != "" {
			item.License = "Photo by " + entry.Author.Name
		}

		items = append(items, item)
	}

	return items, nil
}
