// Package ingest implements component C8: the file and URL ingestion
// pathways that both build a private local sub-index and merge it into the
// shared index exactly once, keeping write-side critical sections
// proportional to one task's output rather than to the whole corpus.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/mfenwick/corpusdex/internal/fetch"
	"github.com/mfenwick/corpusdex/internal/index"
	"github.com/mfenwick/corpusdex/internal/tokenize"
)

const maxLineBuffer = 1024 * 1024

// Fetcher is the subset of *fetch.Fetcher the driver depends on.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Driver builds local sub-indexes from files or URLs and merges them into a
// shared index.
type Driver struct {
	shared  *index.Index
	fetcher Fetcher
}

// NewDriver constructs a Driver that merges into shared, fetching URLs
// through fetcher.
func NewDriver(shared *index.Index, fetcher Fetcher) *Driver {
	return &Driver{shared: shared, fetcher: fetcher}
}

// IngestFile streams path line by line, tokenising and stemming each line,
// assigning consecutive positions starting from 1 across the whole file,
// and merges the resulting local sub-index into the shared index. An empty
// stem does not consume a position (see SPEC_FULL.md §4.4).
func (d *Driver) IngestFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	local := index.New()
	position := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBuffer)
	for scanner.Scan() {
		for _, stem := range tokenize.Tokens(scanner.Text()) {
			if stem == "" {
				continue
			}
			position++
			local.Insert(stem, path, position)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	d.shared.Merge(local)
	return nil
}

// IngestText tokenises already-retrieved text (e.g. HTML already stripped
// of tags) and merges it into the shared index under location. Used by the
// crawler, which must fetch once but needs the raw HTML for link
// extraction before it is stripped.
func (d *Driver) IngestText(text, location string) {
	local := index.New()
	position := 0
	for _, stem := range tokenize.Tokens(text) {
		if stem == "" {
			continue
		}
		position++
		local.Insert(stem, location, position)
	}
	d.shared.Merge(local)
}

// IngestURL fetches rawURL, strips its tags, tokenises the result, and
// merges it into the shared index using rawURL as the location. A fetch
// failure indexes nothing for this URL and returns the error for the
// caller to log; it is not a reason to abort a larger run.
func (d *Driver) IngestURL(ctx context.Context, rawURL string) error {
	raw, err := d.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	d.IngestText(fetch.StripTags(raw), rawURL)
	return nil
}
