// Package fetch performs the single outbound GET of a search. Failures are
// reported as a nil response and a log line, never as an error.
package fetch

import (
	"context"
	"io"
	"log"
	"net/http"
)

const maxBodyBytes = 2 * 1024 * 1024

// Response is a successful page fetch.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (r *Response) Text() string {
	return string(r.Body)
}

// Fetcher returns nil when the page could not be retrieved.
type Fetcher interface {
	Fetch(ctx context.Context, url string) *Response
}

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) *Response {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		log.Printf("Fetch: bad request for %s: %v", url, err)
		return nil
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("Fetch: %s unreachable: %v", url, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Fetch: %s returned status %d", url, resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Printf("Fetch: reading %s: %v", url, err)
		return nil
	}

	return &Response{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}
