package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mfenwick/corpusdex/internal/fetch"
	"github.com/mfenwick/corpusdex/internal/index"
	"github.com/mfenwick/corpusdex/internal/ingest"
	"github.com/mfenwick/corpusdex/internal/workqueue"
)

// buildFanOutServer serves a root page linking to 10 pages, each of which
// links to 10 further pages, mirroring the spec's crawl-bound scenario.
func buildFanOutServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>Root Page")
		for i := 0; i < 10; i++ {
			fmt.Fprintf(w, `<a href="/p%d">p%d</a>`, i, i)
		}
		fmt.Fprint(w, "</body></html>")
	})
	for i := 0; i < 10; i++ {
		i := i
		mux.HandleFunc(fmt.Sprintf("/p%d", i), func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "<html><body>Page %d", i)
			for j := 0; j < 10; j++ {
				fmt.Fprintf(w, `<a href="/p%d/%d">p%d-%d</a>`, i, j, i, j)
			}
			fmt.Fprint(w, "</body></html>")
		})
		for j := 0; j < 10; j++ {
			path := fmt.Sprintf("/p%d/%d", i, j)
			mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html><body>Leaf</body></html>")
			})
		}
	}
	return httptest.NewServer(mux)
}

func TestCrawlStopsAtLimit(t *testing.T) {
	srv := buildFanOutServer(t)
	defer srv.Close()

	shared := index.NewConcurrent()
	fetcher := fetch.NewFetcher(fetch.Config{})
	driver := ingest.NewDriver(shared, fetcher)
	queue := workqueue.New(4)
	defer func() { queue.Shutdown(); queue.Join() }()

	c := New(queue, driver, fetcher, 5)
	if err := c.Run(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}

	if got := c.Visited(); got != 5 {
		t.Fatalf("visited = %d, want 5", got)
	}
	if got := len(shared.GetWordCounts()); got != 5 {
		t.Fatalf("indexed locations = %d, want 5", got)
	}
}

func TestCrawlMalformedSeedIsReported(t *testing.T) {
	shared := index.New()
	fetcher := fetch.NewFetcher(fetch.Config{})
	driver := ingest.NewDriver(shared, fetcher)
	queue := workqueue.New(2)
	defer func() { queue.Shutdown(); queue.Join() }()

	c := New(queue, driver, fetcher, 5)
	if err := c.Run(context.Background(), "not-a-url ftp://nope"); err == nil {
		t.Fatal("expected an error for a malformed/unsupported seed")
	}
}
