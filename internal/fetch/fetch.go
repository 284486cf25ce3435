// Package fetch implements components C3 and C4: fetching a URL's HTML (up
// to 3 redirect hops, with retry/backoff), stripping it down to plain text,
// and extracting the absolute, normalised HTTP(S) links it contains. The
// HTTP plumbing is grounded on the teacher's internal/articles.Source.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const maxRedirects = 3

// Config configures a Fetcher.
type Config struct {
	HTTPClient *http.Client
	RetryMax   int
}

// Fetcher retrieves HTML documents over HTTP, following at most 3 redirect
// hops and retrying transient failures.
type Fetcher struct {
	client *retryablehttp.Client
}

// NewFetcher builds a Fetcher from cfg, applying sane defaults matching the
// teacher's Source constructor.
func NewFetcher(cfg Config) *Fetcher {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	retryMax := cfg.RetryMax
	if retryMax <= 0 {
		retryMax = 3
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = httpClient
	client.RetryMax = retryMax
	client.Logger = nil

	return &Fetcher{client: client}
}

// Fetch retrieves the raw HTML body at rawURL. A non-200 status, a
// malformed URL, or an I/O error all surface as an error; the caller is
// expected to treat that as "index nothing for this URL" and continue.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", rawURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", rawURL, err)
	}
	return string(body), nil
}

// NormalizeSeed parses raw as an HTTP(S) URL and normalises it the same way
// a crawled link is normalised: fragment stripped, path defaulted to "/".
func NormalizeSeed(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse seed url %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("seed url %q: unsupported scheme %q", raw, parsed.Scheme)
	}
	parsed.Fragment = ""
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	return parsed.String(), nil
}
