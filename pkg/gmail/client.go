package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://gmail.googleapis.com/gmail/v1"

// Client performs Gmail API operations against the authenticated mailbox.
type Client interface {
	// Search returns the ids of messages matching a Gmail search query.
	Search(ctx context.Context, query string) ([]string, error)
	// Fetch returns the subject and decoded plain text body of a message.
	Fetch(ctx context.Context, id string) (*Message, error)
}

// Message is a fetched mail message.
type Message struct {
	ID      string
	Subject string
	Body    string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client. The client must carry
// OAuth credentials for the mailbox.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Gmail API client for the "me" mailbox.
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

type listResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	NextPageToken string `json:"nextPageToken"`
}

func (c *httpClient) Search(ctx context.Context, query string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("q", query)
		q.Set("maxResults", "100")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page listResponse
		if err := c.getJSON(ctx, "/users/me/messages?"+q.Encode(), &page); err != nil {
			return nil, eris.Wrap(err, "gmail: search")
		}
		for _, m := range page.Messages {
			ids = append(ids, m.ID)
		}
		if page.NextPageToken == "" {
			return ids, nil
		}
		pageToken = page.NextPageToken
	}
}

type messagePayload struct {
	Headers []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"headers"`
	Body struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []messagePayload `json:"parts"`
}

type messageResponse struct {
	ID      string         `json:"id"`
	Payload messagePayload `json:"payload"`
}

func (c *httpClient) Fetch(ctx context.Context, id string) (*Message, error) {
	var resp messageResponse
	if err := c.getJSON(ctx, "/users/me/messages/"+url.PathEscape(id)+"?format=full", &resp); err != nil {
		return nil, eris.Wrapf(err, "gmail: fetch %s", id)
	}

	msg := &Message{ID: resp.ID}
	for _, h := range resp.Payload.Headers {
		if h.Name == "Subject" {
			msg.Subject = h.Value
			break
		}
	}
	msg.Body = collectText(resp.Payload)
	return msg, nil
}

// collectText concatenates the decoded body data of the payload and all of
// its nested parts, ignoring undecodable chunks.
func collectText(p messagePayload) string {
	text := decodeBody(p.Body.Data)
	for _, part := range p.Parts {
		text += collectText(part)
	}
	return text
}

func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	// Gmail uses URL-safe base64, with or without padding.
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}

func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return &apiError{status: resp.StatusCode, body: string(body)}
	}
	return eris.Wrap(json.Unmarshal(body, out), "unmarshal response")
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
