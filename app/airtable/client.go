package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/dmaslov/media-scrape/app/retry"
)

// Airtable rejects write requests carrying more than 10 records
const maxRecordsPerRequest = 10

type Client struct {
	endpoint     string
	baseID       string
	tableName    string
	apiKey       string
	userAgent    string
	httpClient   *http.Client
	readTimeout  time.Duration
	writeTimeout time.Duration
	policy       retry.Policy
}

func NewClient(endpoint, baseID, tableName, apiKey, userAgent string,
	httpClient *http.Client, readTimeout, writeTimeout time.Duration) (*Client, error) {

	if apiKey == "" || baseID == "" || tableName == "" {
		return nil, fmt.Errorf("%w: AIRTABLE_API_KEY, AIRTABLE_BASE_ID and AIRTABLE_TABLE_NAME are required", ErrMissingCredentials)
	}

	return &Client{
		endpoint:     strings.TrimSuffix(endpoint, "/"),
		baseID:       baseID,
		tableName:    tableName,
		apiKey:       apiKey,
		userAgent:    userAgent,
		httpClient:   httpClient,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		policy:       retry.DefaultPolicy(),
	}, nil
}

func (c *Client) tableURL() string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.baseID, url.PathEscape(c.tableName))
}

// escapeFormulaValue prepares a value for embedding in a single-quoted
// Airtable formula string literal: backslashes first, then single quotes,
// both backslash-escaped. Doubling quotes is not part of Airtable's
// formula grammar and must not be used here.
func escapeFormulaValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}

type listResponse struct {
	Records []Record `json:"records"`
}

// Exists reports whether a record with the given Source_URL is already
// present. The caller is expected to treat a lookup error as "not found":
// an occasional duplicate insert is preferred over silently losing data.
func (c *Client) Exists(ctx context.Context, sourceURL string) (bool, error) {
	params := url.Values{}
	params.Set("filterByFormula", fmt.Sprintf("{Source_URL} = '%s'", escapeFormulaValue(sourceURL)))
	params.Set("maxRecords", "1")

	requestURL := fmt.Sprintf("%s?%s", c.tableURL(), params.Encode())

	var response listResponse

	err := c.policy.Do(ctx, func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(timeoutCtx, "GET", requestURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to query records: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &retry.StatusError{Code: resp.StatusCode, Status: resp.Status}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if err := json.Unmarshal(body, &response); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("existence lookup failed: %w", err)
	}

	return len(response.Records) > 0, nil
}

type createRequest struct {
	Records  []createRecord `json:"records"`
	Typecast bool           `json:"typecast"`
}

type createRecord struct {
	Fields Fields `json:"fields"`
}

// BatchCreate writes records in consecutive chunks of at most 10 and
// returns the records actually created, in order. A failed chunk is
// reported and does not abort the remaining chunks.
func (c *Client) BatchCreate(ctx context.Context, records []Fields) ([]Record, error) {
	var created []Record
	var errs error

	for start := 0; start < len(records); start += maxRecordsPerRequest {
		end := min(start+maxRecordsPerRequest, len(records))

		chunk, err := c.createChunk(ctx, records[start:end])
		if err != nil {
			slog.Error("Record chunk creation failed", "from", start, "to", end, "error", err)
			errs = multierror.Append(errs, fmt.Errorf("records %d-%d: %w", start, end-1, err))
			continue
		}

		created = append(created, chunk...)
	}

	return created, errs
}

func (c *Client) createChunk(ctx context.Context, fields []Fields) ([]Record, error) {
	payload := createRequest{Typecast: true}
	for _, f := range fields {
		payload.Records = append(payload.Records, createRecord{Fields: f})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}

	var response listResponse

	err = c.policy.Do(ctx, func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(timeoutCtx, "POST", c.tableURL(), bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		c.setHeaders(req)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to create records: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &retry.StatusError{Code: resp.StatusCode, Status: resp.Status}
		}

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if err := json.Unmarshal(respBody, &response); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return response.Records, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
}
