package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFolder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/files", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("supportsAllDrives"))
		assert.Equal(t, "true", q.Get("includeItemsFromAllDrives"))
		assert.Equal(t, "allDrives", q.Get("corpora"))
		assert.Contains(t, q.Get("q"), "'root-id' in parents")
		assert.Contains(t, q.Get("q"), "name='00013297'")
		assert.Contains(t, q.Get("q"), "mimeType='application/vnd.google-apps.folder'")

		fmt.Fprint(w, `{"files":[{"id":"folder-1","name":"00013297"}]}`)
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	id, err := client.FindFolder(context.Background(), "root-id", "00013297")
	require.NoError(t, err)
	assert.Equal(t, "folder-1", id)
}

func TestFindFolder_NotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"files":[]}`)
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	id, err := client.FindFolder(context.Background(), "root-id", "00099999")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFindFolder_EscapesQuotes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), `name='it\'s'`)
		fmt.Fprint(w, `{"files":[]}`)
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	_, err := client.FindFolder(context.Background(), "root-id", "it's")
	require.NoError(t, err)
}

func TestListPDFs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Contains(t, q.Get("q"), "'folder-1' in parents")
		assert.Contains(t, q.Get("q"), "mimeType='application/pdf'")
		assert.Equal(t, "modifiedTime desc", q.Get("orderBy"))

		fmt.Fprint(w, `{"files":[
			{"id":"f1","name":"Invoice 13297.pdf","modifiedTime":"2025-03-10T12:00:00Z"},
			{"id":"f2","name":"Grant Agreement.pdf","modifiedTime":"2025-03-09T12:00:00Z"}
		]}`)
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	files, err := client.ListPDFs(context.Background(), "folder-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "Invoice 13297.pdf", files[0].Name)
	assert.Equal(t, "f2", files[1].ID)
	assert.Equal(t, 2025, files[0].ModifiedTime.Year())
}

func TestDownload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/f1", r.URL.Path)
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		assert.Equal(t, "true", r.URL.Query().Get("supportsAllDrives"))

		fmt.Fprint(w, "%PDF-1.7 fake content")
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	var buf bytes.Buffer
	require.NoError(t, client.Download(context.Background(), "f1", &buf))
	assert.Equal(t, "%PDF-1.7 fake content", buf.String())
}

func TestDownload_ErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(nil, WithBaseURL(server.URL))
	var buf bytes.Buffer
	err := client.Download(context.Background(), "missing", &buf)
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus())
	assert.Zero(t, buf.Len())
}
