// Command corpusdex builds and queries an inverted index over a local text
// corpus and/or a crawled set of web pages.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/mfenwick/corpusdex/internal/app"
)

func main() {
	textPath := flag.String("text", "", "ingest a .txt/.text file, or recursively ingest a directory of them")
	htmlSeed := flag.String("html", "", "crawl starting at this URL")
	crawlLimit := flag.Int("crawl", 1, "maximum number of URLs visited during a crawl")
	threads := flag.Int("threads", 5, "worker pool size for ingestion, crawling, and queries")
	queryPath := flag.String("query", "", "query file, one query per line")
	partial := flag.Bool("partial", false, "use prefix search instead of exact search")
	countsPath := flag.String("counts", "counts.json", "write per-location word counts to this path")
	indexPath := flag.String("index", "index.json", "write the full inverted index to this path")
	resultsPath := flag.String("results", "results.json", "write query results to this path")
	debugAddr := flag.String("debug-addr", "", "if set, serve /healthz and /stats on this address")
	connTimeout := flag.Int("conn-timeout", 15, "HTTP client timeout in seconds for fetches")
	retryMax := flag.Int("retry-max", 3, "maximum retry attempts for a fetch")
	flag.Parse()

	if *threads < 1 {
		*threads = 5
	}

	cfg := app.Config{
		TextPath:    *textPath,
		HTMLSeed:    *htmlSeed,
		CrawlLimit:  *crawlLimit,
		Threads:     *threads,
		QueryPath:   *queryPath,
		Partial:     *partial,
		CountsPath:  *countsPath,
		IndexPath:   *indexPath,
		ResultsPath: *resultsPath,
		DebugAddr:   *debugAddr,
		ConnTimeout: time.Duration(*connTimeout) * time.Second,
		RetryMax:    *retryMax,
	}

	ctx := context.Background()
	if err := app.New(cfg).Run(ctx, os.Stdout); err != nil {
		log.Fatalf("corpusdex: %v", err)
	}
}
