package gsheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Client performs Google Sheets values operations.
type Client interface {
	// Values reads a range and returns its cells as strings.
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
	// Append appends one row to a range. Values are interpreted as
	// user-entered, so dates and numbers keep their spreadsheet formatting.
	Append(ctx context.Context, spreadsheetID, writeRange string, row []any) error
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Sheets API client. hc must carry OAuth credentials.
func NewClient(hc *http.Client, opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    hc,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type valuesResponse struct {
	Values [][]any `json:"values"`
}

func (c *httpClient) Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	path := "/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(readRange)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "gsheets: create request")
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "gsheets: get values %s", readRange)
	}

	var resp valuesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "gsheets: unmarshal values")
	}

	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		cells := make([]string, len(r))
		for j, v := range r {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

type appendRequest struct {
	Values [][]any `json:"values"`
}

func (c *httpClient) Append(ctx context.Context, spreadsheetID, writeRange string, row []any) error {
	payload, err := json.Marshal(appendRequest{Values: [][]any{row}})
	if err != nil {
		return eris.Wrap(err, "gsheets: marshal append")
	}

	q := url.Values{}
	q.Set("valueInputOption", "USER_ENTERED")
	q.Set("insertDataOption", "INSERT_ROWS")
	path := "/spreadsheets/" + url.PathEscape(spreadsheetID) +
		"/values/" + url.PathEscape(writeRange) + ":append?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "gsheets: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return eris.Wrapf(err, "gsheets: append to %s", writeRange)
	}
	return nil
}

func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{status: resp.StatusCode, body: string(body)}
	}
	return body, nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

// HTTPStatus exposes the status code for transient-error classification.
func (e *apiError) HTTPStatus() int { return e.status }
