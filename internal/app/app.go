// Package app wires the index, work queue, ingestion, crawl, search and
// report components into one run, matching the teacher's internal/app: a
// Config struct with defaulting in New, and a Run that prints per-stage
// failures to out rather than aborting the whole run.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mfenwick/corpusdex/internal/corpus"
	"github.com/mfenwick/corpusdex/internal/crawl"
	"github.com/mfenwick/corpusdex/internal/fetch"
	"github.com/mfenwick/corpusdex/internal/index"
	"github.com/mfenwick/corpusdex/internal/ingest"
	"github.com/mfenwick/corpusdex/internal/report"
	"github.com/mfenwick/corpusdex/internal/search"
	"github.com/mfenwick/corpusdex/internal/status"
	"github.com/mfenwick/corpusdex/internal/workqueue"
)

// Config encapsulates the full runtime configuration for one run, driven
// directly by the CLI flags.
type Config struct {
	TextPath   string
	HTMLSeed   string
	CrawlLimit int
	Threads    int

	QueryPath string
	Partial   bool

	CountsPath  string
	IndexPath   string
	ResultsPath string

	DebugAddr   string
	ConnTimeout time.Duration
	RetryMax    int
}

// App glues together ingestion, crawling, search and reporting.
type App struct {
	cfg Config
}

// New constructs an App, applying the same defaults the CLI flags default
// to, so a Config built programmatically (e.g. in tests) behaves the same
// as one built from flag.Parse.
func New(cfg Config) *App {
	if cfg.Threads < 1 {
		cfg.Threads = 5
	}
	if cfg.CrawlLimit < 1 {
		cfg.CrawlLimit = 1
	}
	if cfg.CountsPath == "" {
		cfg.CountsPath = "counts.json"
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = "index.json"
	}
	if cfg.ResultsPath == "" {
		cfg.ResultsPath = "results.json"
	}
	if cfg.ConnTimeout <= 0 {
		cfg.ConnTimeout = 15 * time.Second
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 3
	}
	return &App{cfg: cfg}
}

// Run ingests -text and/or -html, answers -query if given, and writes
// counts/index/results JSON. Every per-stage failure is printed to out and
// the run continues; the process exit code is not affected by them (see
// SPEC_FULL.md §7).
func (a *App) Run(ctx context.Context, out io.Writer) error {
	shared := index.NewConcurrent()
	queue := workqueue.New(a.cfg.Threads)
	defer func() {
		queue.Shutdown()
		queue.Join()
	}()

	fetcher := fetch.NewFetcher(fetch.Config{
		RetryMax:   a.cfg.RetryMax,
		HTTPClient: &http.Client{Timeout: a.cfg.ConnTimeout},
	})
	driver := ingest.NewDriver(shared, fetcher)

	if a.cfg.DebugAddr != "" {
		srv := status.New(a.cfg.DebugAddr, shared, queue)
		errCh := srv.Start()
		go func() {
			if err := <-errCh; err != nil {
				log.Printf("app: debug server on %s stopped: %v", a.cfg.DebugAddr, err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Printf("app: debug server shutdown: %v", err)
			}
		}()
	}

	if a.cfg.TextPath != "" {
		a.ingestText(queue, driver, out)
	}

	if a.cfg.HTMLSeed != "" {
		a.runCrawl(ctx, queue, driver, fetcher, out)
	}

	var results map[string][]index.SearchResult
	if a.cfg.QueryPath != "" {
		results = a.runQueries(shared, queue, out)
	}

	if err := report.WriteCounts(a.cfg.CountsPath, shared); err != nil {
		fmt.Fprintf(out, "write counts: %v\n", err)
	}
	if err := report.WriteIndex(a.cfg.IndexPath, shared); err != nil {
		fmt.Fprintf(out, "write index: %v\n", err)
	}
	if results != nil {
		if err := report.WriteResults(a.cfg.ResultsPath, results); err != nil {
			fmt.Fprintf(out, "write results: %v\n", err)
		}
	}

	return nil
}

func (a *App) ingestText(queue *workqueue.WorkQueue, driver *ingest.Driver, out io.Writer) {
	files, err := corpus.WalkTextFiles(a.cfg.TextPath)
	if err != nil {
		fmt.Fprintf(out, "walk %s: %v\n", a.cfg.TextPath, err)
		return
	}
	for _, f := range files {
		f := f
		queue.Execute(func() {
			if err := driver.IngestFile(f); err != nil {
				log.Printf("app: ingest %s: %v", f, err)
			}
		})
	}
	queue.Finish()
}

func (a *App) runCrawl(ctx context.Context, queue *workqueue.WorkQueue, driver *ingest.Driver, fetcher *fetch.Fetcher, out io.Writer) {
	c := crawl.New(queue, driver, fetcher, a.cfg.CrawlLimit)
	if err := c.Run(ctx, a.cfg.HTMLSeed); err != nil {
		fmt.Fprintf(out, "crawl %s: %v\n", a.cfg.HTMLSeed, err)
	}
}

func (a *App) runQueries(shared *index.Index, queue *workqueue.WorkQueue, out io.Writer) map[string][]index.SearchResult {
	p := search.NewProcessor(shared, queue, a.cfg.Partial)
	if err := p.ProcessQueryFile(a.cfg.QueryPath); err != nil {
		fmt.Fprintf(out, "process queries %s: %v\n", a.cfg.QueryPath, err)
	}
	return p.AllResults()
}
