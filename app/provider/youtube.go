package provider

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmaslov/media-scrape/app/retry"
)

const youtubeDefaultEndpoint = "https://www.googleapis.com/youtube/v3/search"

// YouTube Data API cap on maxResults
const youtubeMaxResults = 50

var _ ProviderInterface = (*YouTube)(nil)

type YouTube struct {
	endpoint   string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	policy     retry.Policy
}

func NewYouTube(httpClient *http.Client, apiKey string, userAgent string, timeout time.Duration) *YouTube {
	return &YouTube{
		endpoint:   youtubeDefaultEndpoint,
		apiKey:     apiKey,
		userAgent:  userAgent,
		httpClient: httpClient,
		timeout:    timeout,
		policy:     retry.DefaultPolicy(),
	}
}

func (y *YouTube) Name() string {
	return "YouTube"
}

func (y *YouTube) Supports(mediaType MediaType) bool {
	return mediaType == MediaTypeVideo
}

type youtubeThumbnail struct {
	URL string `json:"url"`
}

type youtubeSnippet struct {
	Title       string                      `json:"title"`
	PublishedAt string                      `json:"publishedAt"`
	Thumbnails  map[string]youtubeThumbnail `json:"thumbnails"`
}

type youtubeSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet youtubeSnippet `json:"snippet"`
}

type youtubeResponse struct {
	Items []youtubeSearchItem `json:"items"`
}

func (y *YouTube) Search(ctx context.Context, query Query) ([]Item, error) {
	maxResults := max(1, min(query.MaxItems, youtubeMaxResults))

	params := url.Values{}
	params.Set("key", y.apiKey)
	params.Set("part", "snippet")
	params.Set("q", query.Topic)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("order", "relevance")

	if !query.Dates.IsZero() {
		params.Set("publishedAfter", query.Dates.After.UTC().Format(time.RFC3339))
		params.Set("publishedBefore", query.Dates.Before.UTC().Format(time.RFC3339))
	}

	searchURL := fmt.Sprintf("%s?%s", y.endpoint, params.Encode())

	var response youtubeResponse
	if err := getJSON(ctx, y.httpClient, y.policy, y.timeout, searchURL, nil, y.userAgent, &response); err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	items := make([]Item, 0, len(response.Items))
	for _, row := range response.Items {
		if row.ID.VideoID == "" {
			continue
		}
		if len(items) >= query.MaxItems {
			break
		}

		thumbnail := row.Snippet.Thumbnails["medium"].URL
		if thumbnail == "" {
			thumbnail = row.Snippet.Thumbnails["default"].URL
		}

		items = append(items, Item{
			Title:         cmp.Or(row.Snippet.Title, query.Topic, "Untitled"),
			Provider:      y.Name(),
			MediaType:     MediaTypeVideo,
			SourceURL:     "https://www.youtube.com/watch?v=" + row.ID.VideoID,
			ThumbnailURL:  thumbnail,
			PublishedDate: row.Snippet.PublishedAt,
		})
	}

	return items, nil
}
