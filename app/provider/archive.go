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

const archiveDefaultEndpoint = "https://archive.org/advancedsearch.php"

// Archive.org cap on rows
const archiveMaxRows = 100

var _ ProviderInterface = (*Archive)(nil)

type Archive struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	policy     retry.Policy
}

func NewArchive(httpClient *http.Client, userAgent string, timeout time.Duration) *Archive {
	return &Archive{
		endpoint:   archiveDefaultEndpoint,
		userAgent:  userAgent,
		httpClient: httpClient,
		timeout:    timeout,
		policy:     retry.DefaultPolicy(),
	}
}

func (a *Archive) Name() string {
	return "Archive"
}

func (a *Archive) Supports(mediaType MediaType) bool {
	return mediaType == MediaTypeImage || mediaType == MediaTypeVideo
}

type archiveDoc struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	MediaType  string `json:"mediatype"`
	Year       any    `json:"year"`
}

type archiveResponse struct {
	Response struct {
		Docs []archiveDoc `json:"docs"`
	} `json:"response"`
}

func (a *Archive) Search(ctx context.Context, query Query) ([]Item, error) {
	mediatype := "image"
	if query.MediaType == MediaTypeVideo {
		mediatype = "movies"
	}

	q := fmt.Sprintf(`(title:("%s") OR description:("%s")) AND mediatype:(%s)`,
		query.Topic, query.Topic, mediatype)

	if yearStart, yearEnd := query.Dates.Years(); yearStart > 0 && yearEnd > 0 {
		q += fmt.Sprintf(" AND year:[%d TO %d]", yearStart, yearEnd)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Add("fl[]", "identifier")
	params.Add("fl[]", "title")
	params.Add("fl[]", "mediatype")
	params.Add("fl[]", "year")
	params.Set("rows", strconv.Itoa(max(1, min(query.MaxItems, archiveMaxRows))))
	params.Set("output", "json")

	searchURL := fmt.Sprintf("%s?%s", a.endpoint, params.Encode())

	var response archiveResponse
	if err := getJSON(ctx, a.httpClient, a.policy, a.timeout, searchURL, nil, a.userAgent, &response); err != nil {
		return nil, fmt.Errorf("archive search failed: %w", err)
	}

	items := make([]Item, 0, len(response.Response.Docs))
	for _, doc := range response.Response.Docs {
		if doc.Identifier == "" {
			continue
		}
		if len(items) >= query.MaxItems {
			break
		}

		items = append(items, Item{
			Title:         cmp.Or(doc.Title, query.Topic, "Untitled"),
			Provider:      a.Name(),
			MediaType:     query.MediaType,
			SourceURL:     "https://archive.org/details/" + doc.Identifier,
			ThumbnailURL:  "https://archive.org/services/img/" + doc.Identifier,
			PublishedDate: archivePublishedDate(doc.Year),
			License:       "Archive",
		})
	}

	return items, nil
}

// The advancedsearch API returns year as either a number or a string
func archivePublishedDate(year any) string {
	switch v := year.(type) {
	case float64:
		return fmt.Sprintf("%d-01-01", int(v))
	case string:
		if _, err := strconv.Atoi(v); err == nil {
			return v + "-01-01"
		}
	}
	return ""
}
