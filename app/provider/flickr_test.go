package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dmaslov/media-scrape/app/retry"
)

const flickrTestFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Recent uploads tagged wildlife</title>
  <entry>
    <title>Fox at dawn</title>
    <link rel="alternate" type="text/html" href="https://www.flickr.com/photos/jane/111/"/>
    <link rel="enclosure" type="image/jpeg" href="https://live.staticflickr.com/111_b.jpg"/>
    <published>2021-03-14T07:30:00Z</published>
    <author><name>Jane</name></author>
  </entry>
  <entry>
    <title></title>
    <link rel="alternate" type="text/html" href="https://www.flickr.com/photos/joe/222/"/>
    <published>2021-03-15T08:00:00Z</published>
    <author><name>Joe</name></author>
  </entry>
</feed>`

func newTestFlickr(serverURL string) *Flickr {
	return &Flickr{
		endpoint:     serverURL,
		userAgent:    "Test Agent",
		httpClient:   http.DefaultClient,
		timeout:      5 * time.Second,
		policy:       retry.Policy{MaxAttempts: 2, Delay: time.Millisecond, Retryable: retry.IsRetryable},
		gofeedParser: gofeed.NewParser(),
	}
}

func TestFlickrSearch(t *testing.T) {
	var receivedQuery map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(flickrTestFeed))
	}))
	defer server.Close()

	flickr := newTestFlickr(server.URL)

	items, err := flickr.Search(context.Background(), Query{
		Topic:     "Wildlife Photography",
		MediaType: MediaTypeImage,
		MaxItems:  10,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := receivedQuery["format"]; len(got) != 1 || got[0] != "atom" {
		t.Errorf("Expected format=atom, got %v", got)
	}
	if got := receivedQuery["tags"]; len(got) != 1 || got[0] != "wildlife,photography" {
		t.Errorf("Expected comma-joined lowercase tags, got %v", got)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	if items[0].Title != "Fox at dawn" {
		t.Errorf("Expected title 'Fox at dawn', got '%s'", items[0].Title)
	}
	if items[0].SourceURL != "https://www.flickr.com/photos/jane/111/" {
		t.Errorf("Expected photo page as source URL, got '%s'", items[0].SourceURL)
	}
	if items[0].ThumbnailURL != "https://live.staticflickr.com/111_b.jpg" {
		t.Errorf("Expected enclosure as thumbnail, got '%s'", items[0].ThumbnailURL)
	}
	if items[0].PublishedDate != "2021-03-14T07:30:00Z" {
		t.Errorf("Expected RFC3339 published date, got '%s'", items[0].PublishedDate)
	}
	if items[0].License != "Photo by Jane" {
		t.Errorf("Expected attribution from author, got '%s'", items[0].License)
	}
	if items[0].MediaType != MediaTypeImage {
		t.Errorf("Expected media type Image, got '%s'", items[0].MediaType)
	}

	// Empty entry title falls back to the topic
	if items[1].Title != "Wildlife Photography" {
		t.Errorf("Expected title fallback to topic, got '%s'", items[1].Title)
	}
}

func TestFlickrSearchTrimsToMaxItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(flickrTestFeed))
	}))
	defer server.Close()

	flickr := newTestFlickr(server.URL)

	items, err := flickr.Search(context.Background(), Query{Topic: "wildlife", MediaType: MediaTypeImage, MaxItems: 1})
	if err != nil {
		t.Fatal(err)
	}

	if len(items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(items))
	}
}

func TestFlickrSearchMalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	flickr := newTestFlickr(server.URL)

	_, err := flickr.Search(context.Background(), Query{Topic: "wildlife", MediaType: MediaTypeImage, MaxItems: 5})
	if err == nil {
		t.Error("Expected error for malformed feed")
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newTestFlickr("http://example.com"))
	registry.Register(newTestOpenverse("http://example.com"))

	if registry.Count() != 2 {
		t.Errorf("Expected 2 providers, got %d", registry.Count())
	}

	// Case-insensitive lookup
	p, err := registry.Get("FLICKR")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "Flickr" {
		t.Errorf("Expected canonical name 'Flickr', got '%s'", p.Name())
	}

	if _, err := registry.Get("unknown"); err == nil {
		t.Error("Expected error for unknown provider")
	}

	names := registry.Names()
	if len(names) != 2 || names[0] != "Flickr" || names[1] != "Openverse" {
		t.Errorf("Expected registration-ordered names, got %v", names)
	}
}
