// Package airtable is a minimal Airtable REST client that upserts records.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aidanlsb/vaultkit/internal/fieldmap"
	"github.com/aidanlsb/vaultkit/internal/syncer"
)

// DefaultBaseURL is the public Airtable API endpoint.
const DefaultBaseURL = "https://api.airtable.com"

// MaxBatchSize is the most records Airtable accepts in one request.
const MaxBatchSize = 10

// Client talks to the Airtable REST API with a personal access token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint, such as a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client authenticated with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns a handle on one table of one base.
func (c *Client) Table(baseID, tableID string) *Table {
	return &Table{client: c, baseID: baseID, tableID: tableID}
}

// Table is an Airtable table. It implements syncer.RecordStore.
type Table struct {
	client  *Client
	baseID  string
	tableID string
}

var _ syncer.RecordStore = (*Table)(nil)

// APIError is a non-2xx response from Airtable.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "airtable returned %d", e.StatusCode)
	if e.Type != "" {
		b.WriteString(" " + e.Type)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

type upsertRequest struct {
	PerformUpsert struct {
		FieldsToMergeOn []string `json:"fieldsToMergeOn"`
	} `json:"performUpsert"`
	Records []upsertRecord `json:"records"`
}

type upsertRecord struct {
	Fields *fieldmap.Record `json:"fields"`
}

type upsertResponse struct {
	CreatedRecords []string `json:"createdRecords"`
	UpdatedRecords []string `json:"updatedRecords"`
}

// BatchUpsert creates or updates records matched on keyFields. Records are
// sent in requests of MaxBatchSize, one after another; the first failure
// stops the run and is returned as is. Earlier batches stay applied.
func (t *Table) BatchUpsert(ctx context.Context, records []*fieldmap.Record, keyFields []string) (syncer.UpsertSummary, error) {
	var summary syncer.UpsertSummary
	for start := 0; start < len(records); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(records) {
			end = len(records)
		}

		resp, err := t.upsertChunk(ctx, records[start:end], keyFields)
		if err != nil {
			return summary, err
		}
		summary.Created += len(resp.CreatedRecords)
		summary.Updated += len(resp.UpdatedRecords)
	}
	return summary, nil
}

func (t *Table) upsertChunk(ctx context.Context, records []*fieldmap.Record, keyFields []string) (*upsertResponse, error) {
	var reqBody upsertRequest
	reqBody.PerformUpsert.FieldsToMergeOn = keyFields
	for _, r := range records {
		reqBody.Records = append(reqBody.Records, upsertRecord{Fields: r})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := t.client.baseURL + "/v0/" + url.PathEscape(t.baseID) + "/" + url.PathEscape(t.tableID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.client.token)

	// Transport failures come back as the *url.Error from Do.
	resp, err := t.client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	var result upsertResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// parseAPIError reads both error shapes Airtable uses:
// {"error": "NOT_FOUND"} and {"error": {"type": "...", "message": "..."}}.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	var typ string
	if err := json.Unmarshal(envelope.Error, &typ); err == nil {
		apiErr.Type = typ
		return apiErr
	}

	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		apiErr.Type = detail.Type
		apiErr.Message = detail.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}
