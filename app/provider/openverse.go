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

const openverseDefaultEndpoint = "https://api.openverse.engineering/v1"

// Openverse cap on page_size
const openverseMaxPageSize = 50

var _ ProviderInterface = (*Openverse)(nil)

type Openverse struct {
	endpoint   string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	policy     retry.Policy
}

func NewOpenverse(httpClient *http.Client, apiKey string, userAgent string, timeout time.Duration) *Openverse {
	return &Openverse{
		endpoint:   openverseDefaultEndpoint,
		apiKey:     apiKey,
		userAgent:  userAgent,
		httpClient: httpClient,
		timeout:    timeout,
		policy:     retry.DefaultPolicy(),
	}
}

func (o *Openverse) Name() string {
	return "Openverse"
}

func (o *Openverse) Supports(mediaType MediaType) bool {
	return mediaType == MediaTypeImage || mediaType == MediaTypeVideo
}

type openverseResult struct {
	Title             string `json:"title"`
	URL               string `json:"url"`
	ForeignLandingURL string `json:"foreign_landing_url"`
	Thumbnail         string `json:"thumbnail"`
	Creator           string `json:"creator"`
	License           string `json:"license"`
	Attribution       string `json:"attribution"`
}

type openverseResponse struct {
	Results []openverseResult `json:"results"`
}

func (o *Openverse) Search(ctx context.Context, query Query) ([]Item, error) {
	collection := "images"
	if query.MediaType == MediaTypeVideo {
		collection = "videos"
	}

	pageSize := max(1, min(query.MaxItems, openverseMaxPageSize))

	params := url.Values{}
	params.Set("q", query.Topic)
	params.Set("page_size", strconv.Itoa(pageSize))

	header := http.Header{}
	if o.apiKey != "" {
		header.Set("Authorization", "Bearer "+o.apiKey)
	}

	searchURL := fmt.Sprintf("%s/%s/?%s", o.endpoint, collection, params.Encode())

	var response openverseResponse
	if err := getJSON(ctx, o.httpClient, o.policy, o.timeout, searchURL, header, o.userAgent, &response); err != nil {
		return nil, fmt.Errorf("openverse search failed: %w", err)
	}

	items := make([]Item, 0, len(response.Results))
	for _, result := range response.Results {
		if len(items) >= query.MaxItems {
			break
		}

		items = append(items, Item{
			Title:     cmp.Or(result.Title, query.Topic, "Untitled"),
			Provider:  o.Name(),
			MediaType: query.MediaType,
			// Prefer the durable landing page over a possibly-expiring
			// direct asset URL
			SourceURL:    cmp.Or(result.ForeignLandingURL, result.URL),
			ThumbnailURL: cmp.Or(result.Thumbnail, result.URL),
			License:      cmp.Or(result.Attribution, result.License),
		})
	}

	return items, nil
}
