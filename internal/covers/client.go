// Package covers resolves book cover image URLs from OpenLibrary by ISBN.
package covers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://covers.openlibrary.org"

// Client looks up cover images on covers.openlibrary.org.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a cover lookup client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used in tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// FetchCoverURL builds the OpenLibrary cover URL for an ISBN and verifies it
// is reachable. Returns the URL, or "" when the ISBN is invalid or the image
// cannot be fetched. A missing cover never fails the caller's operation.
func (c *Client) FetchCoverURL(ctx context.Context, isbn string) string {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return ""
	}

	coverURL := fmt.Sprintf("%s/b/isbn/%s-M.jpg", c.baseURL, isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		log.Printf("could not build cover request for ISBN %s: %v", isbn, err)
		return ""
	}
	req.Header.Set("User-Agent", "Booklib/1.0 (https://github.com/mrlokans/booklib)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("could not fetch cover for ISBN %s: %v", isbn, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("could not fetch cover for ISBN %s: status %d", isbn, resp.StatusCode)
		return ""
	}

	return coverURL
}

// normalizeISBN removes hyphens and spaces from ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	// Basic validation: ISBN-10 or ISBN-13
	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}

	return isbn
}
