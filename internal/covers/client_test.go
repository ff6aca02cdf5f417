package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_FetchCoverURL_Success(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	url := client.FetchCoverURL(context.Background(), "9780441013593")

	assert.Equal(t, server.URL+"/b/isbn/9780441013593-M.jpg", url)
	assert.Equal(t, "/b/isbn/9780441013593-M.jpg", requestedPath)
}

func TestClient_FetchCoverURL_NormalizesISBN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	url := client.FetchCoverURL(context.Background(), "978-0-441-01359-3")

	assert.Equal(t, server.URL+"/b/isbn/9780441013593-M.jpg", url)
}

func TestClient_FetchCoverURL_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	url := client.FetchCoverURL(context.Background(), "9780441013593")

	assert.Empty(t, url)
}

func TestClient_FetchCoverURL_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Connection refused from here on

	client := NewClientWithBaseURL(server.URL)
	url := client.FetchCoverURL(context.Background(), "9780441013593")

	assert.Empty(t, url)
}

func TestClient_FetchCoverURL_InvalidISBN(t *testing.T) {
	requested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	assert.Empty(t, client.FetchCoverURL(context.Background(), ""))
	assert.Empty(t, client.FetchCoverURL(context.Background(), "123"))
	assert.Empty(t, client.FetchCoverURL(context.Background(), "not-an-isbn"))
	assert.False(t, requested, "invalid ISBNs should not hit the network")
}

func TestNormalizeISBN(t *testing.T) {
	assert.Equal(t, "9780441013593", normalizeISBN("978-0-441-01359-3"))
	assert.Equal(t, "0441013593", normalizeISBN("0 441 01359 3"))
	assert.Empty(t, normalizeISBN("12345"))
	assert.Empty(t, normalizeISBN(""))
}
