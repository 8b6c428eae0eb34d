package gdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://www.googleapis.com/drive/v3"

// Client performs Google Drive API operations. All listing calls carry the
// shared-drive flags so case folders on shared drives are visible.
type Client interface {
	// FindFolder returns the id of the folder with the exact given name
	// directly under parentID, or "" when no such folder exists.
	FindFolder(ctx context.Context, parentID, name string) (string, error)
	// ListPDFs returns the PDF files directly inside folderID, newest
	// modifiedTime first.
	ListPDFs(ctx context.Context, folderID string) ([]File, error)
	// Download streams the content of a file into w.
	Download(ctx context.Context, fileID string, w io.Writer) error
}

// File is a Drive file reference.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ModifiedTime time.Time `json:"modifiedTime"`
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

// NewClient creates a Drive API client. hc must carry OAuth credentials.
func NewClient(hc *http.Client, opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    hc,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 60 * time.Second}
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type fileListResponse struct {
	Files []File `json:"files"`
}

func (c *httpClient) FindFolder(ctx context.Context, parentID, name string) (string, error) {
	query := fmt.Sprintf(
		"'%s' in parents and mimeType='application/vnd.google-apps.folder' and name='%s' and trashed=false",
		parentID, strings.ReplaceAll(name, "'", `\'`),
	)
	q := sharedDriveQuery()
	q.Set("q", query)
	q.Set("fields", "files(id, name)")
	q.Set("pageSize", "1")

	var resp fileListResponse
	if err := c.getJSON(ctx, "/files?"+q.Encode(), &resp); err != nil {
		return "", eris.Wrapf(err, "gdrive: find folder %q", name)
	}
	if len(resp.Files) == 0 {
		return "", nil
	}
	return resp.Files[0].ID, nil
}

func (c *httpClient) ListPDFs(ctx context.Context, folderID string) ([]File, error) {
	query := fmt.Sprintf(
		"'%s' in parents and mimeType='application/pdf' and trashed=false",
		folderID,
	)
	q := sharedDriveQuery()
	q.Set("q", query)
	q.Set("orderBy", "modifiedTime desc")
	q.Set("fields", "files(id, name, modifiedTime)")
	q.Set("pageSize", "100")

	var resp fileListResponse
	if err := c.getJSON(ctx, "/files?"+q.Encode(), &resp); err != nil {
		return nil, eris.Wrapf(err, "gdrive: list pdfs in %s", folderID)
	}
	return resp.Files, nil
}

func (c *httpClient) Download(ctx context.Context, fileID string, w io.Writer) error {
	q := url.Values{}
	q.Set("alt", "media")
	q.Set("supportsAllDrives", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/files/"+url.PathEscape(fileID)+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "gdrive: create download request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "gdrive: download %s", fileID)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return eris.Wrapf(&apiError{status: resp.StatusCode, body: string(body)},
			"gdrive: download %s", fileID)
	}

	_, err = io.Copy(w, resp.Body)
	return eris.Wrapf(err, "gdrive: copy %s", fileID)
}

func sharedDriveQuery() url.Values {
	q := url.Values{}
	q.Set("supportsAllDrives", "true")
	q.Set("includeItemsFromAllDrives", "true")
	q.Set("corpora", "allDrives")
	return q
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
