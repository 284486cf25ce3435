// Package crawl implements component C9: a bounded breadth-first crawl
// seeded at a URL, feeding the ingest driver (C8) through the work queue
// (C7). The shared visited set is grounded on the teacher-adjacent
// GGordonCode-site_word_freq crawler, adapted to a precise distinct-URL
// bound instead of an unbounded walk.
package crawl

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/mfenwick/corpusdex/internal/fetch"
	"github.com/mfenwick/corpusdex/internal/ingest"
	"github.com/mfenwick/corpusdex/internal/workqueue"
)

// Crawler drives a bounded BFS from a seed URL.
type Crawler struct {
	queue   *workqueue.WorkQueue
	driver  *ingest.Driver
	fetcher *fetch.Fetcher
	limit   int

	mu      sync.Mutex
	visited map[string]bool
}

// New constructs a Crawler that will enqueue work onto queue, ingest
// through driver, fetch through fetcher, and visit at most limit distinct
// URLs. limit < 1 is treated as 1.
func New(queue *workqueue.WorkQueue, driver *ingest.Driver, fetcher *fetch.Fetcher, limit int) *Crawler {
	if limit < 1 {
		limit = 1
	}
	return &Crawler{
		queue:   queue,
		driver:  driver,
		fetcher: fetcher,
		limit:   limit,
		visited: make(map[string]bool),
	}
}

// Run normalises seed, seeds the visited set and the work queue with it,
// and blocks until the crawl has fully drained (queue.Finish). A malformed
// seed URL is reported and the crawl never starts.
func (c *Crawler) Run(ctx context.Context, seed string) error {
	normalized, err := fetch.NormalizeSeed(seed)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	c.mu.Lock()
	c.visited[normalized] = true
	c.mu.Unlock()

	c.enqueue(ctx, normalized)
	c.queue.Finish()
	return nil
}

// Visited returns the number of distinct URLs the crawl has enqueued.
func (c *Crawler) Visited() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.visited)
}

func (c *Crawler) enqueue(ctx context.Context, pageURL string) {
	c.queue.Execute(func() {
		c.processPage(ctx, pageURL)
	})
}

func (c *Crawler) processPage(ctx context.Context, pageURL string) {
	raw, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		// FetchFailure: index nothing, extract nothing, finish cleanly.
		log.Printf("crawl: fetch %s: %v", pageURL, err)
		return
	}

	base, err := url.Parse(pageURL)
	if err == nil {
		c.followLinks(ctx, raw, base)
	}

	c.driver.IngestText(fetch.StripTags(raw), pageURL)
}

// followLinks extracts links from the pre-strip HTML and, for each one
// still within the crawl's limit and not already visited, marks it visited
// and enqueues it. The visited mutex is held for the whole decision but is
// always released before any index lock is taken elsewhere in the pipeline.
func (c *Crawler) followLinks(ctx context.Context, raw string, base *url.URL) {
	links := fetch.ExtractLinks(raw, base)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, link := range links {
		if len(c.visited) >= c.limit {
			return
		}
		if c.visited[link] {
			continue
		}
		c.visited[link] = true
		c.enqueue(ctx, link)
	}
}
