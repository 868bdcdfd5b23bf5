package airtable

import (
	"errors"
)

// ErrMissingCredentials is returned when the destination store
// configuration is absent; nothing is retried.
var ErrMissingCredentials = errors.New("missing Airtable credentials")

// Fields maps to the destination table's exact column names. The columns
// are fixed by the destination schema, not by this pipeline.
type Fields struct {
	Title         string `json:"Title"`
	Provider      string `json:"Provider"`
	MediaType     string `json:"Media_Type,omitempty"`
	SourceURL     string `json:"Source_URL"`
	ThumbnailURL  string `json:"Thumbnail_URL,omitempty"`
	PublishedDate string `json:"Published_Date,omitempty"`
	Copyright     string `json:"Copyright,omitempty"`
	Notes         string `json:"Notes,omitempty"`
}

type Record struct {
	ID          string `json:"id"`
	CreatedTime string `json:"createdTime,omitempty"`
	Fields      Fields `json:"fields"`
}
