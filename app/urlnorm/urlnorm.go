package urlnorm

import (
	"net/url"
	"strings"
)

var trackingPrefixes = []string{"utm_"}

var trackingKeys = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"yclid":  true,
	"mc_cid": true,
	"mc_eid": true,
}

// Normalize canonicalizes a URL so that cosmetically different URLs
// referring to the same resource compare equal: the host is lower-cased,
// the fragment and known tracking parameters are dropped, remaining query
// parameters are re-encoded in a stable order, and runs of consecutive
// path separators are collapsed. On any parse failure the input is
// returned unchanged. Normalize is idempotent.
func Normalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	if parsed.RawQuery != "" {
		query, err := url.ParseQuery(parsed.RawQuery)
		if err != nil {
			return rawURL
		}

		cleaned := url.Values{}
		for key, values := range query {
			if isTrackingParam(key) {
				continue
			}
			for _, value := range values {
				if value == "" {
					continue
				}
				cleaned.Add(key, value)
			}
		}

		// url.Values.Encode sorts by key, giving a stable order
		parsed.RawQuery = cleaned.Encode()
	}

	path := parsed.Path
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	parsed.Path = path
	parsed.RawPath = ""

	return parsed.String()
}

func isTrackingParam(key string) bool {
	lower := strings.ToLower(key)
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return trackingKeys[lower]
}
