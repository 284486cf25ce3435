// Package search implements component C10: the query processor that turns a
// query file into a deterministic, deduplicated set of search results keyed
// by canonical query.
package search

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mfenwick/corpusdex/internal/index"
	"github.com/mfenwick/corpusdex/internal/tokenize"
	"github.com/mfenwick/corpusdex/internal/workqueue"
)

// Processor reads query lines, stems and canonicalises each into a query
// key, runs at most one search per distinct key, and collects the results.
type Processor struct {
	idx     *index.Index
	queue   *workqueue.WorkQueue
	partial bool

	mu      sync.Mutex
	results map[string][]index.SearchResult
}

// NewProcessor constructs a Processor that searches idx, running one task
// per query line on queue. partial selects PartialSearch over ExactSearch.
func NewProcessor(idx *index.Index, queue *workqueue.WorkQueue, partial bool) *Processor {
	return &Processor{
		idx:     idx,
		queue:   queue,
		partial: partial,
		results: make(map[string][]index.SearchResult),
	}
}

// ProcessQueryFile reads path line by line and enqueues each line as an
// independent ParseQueryLine task (a line with no stems stores nothing),
// then blocks until every enqueued
// task has completed. The queue is drained even if reading the file fails
// partway through.
func (p *Processor) ProcessQueryFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	var readErr error
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		p.queue.Execute(func() {
			p.ParseQueryLine(line)
		})
	}
	readErr = scanner.Err()
	f.Close()

	p.queue.Finish()
	if readErr != nil {
		return fmt.Errorf("read %s: %w", path, readErr)
	}
	return nil
}

// ParseQueryLine stems line into a unique, sorted set of stems, joins them
// into the canonical query key, and runs a search for that key unless a
// result is already stored under it. The presence-check and the store are a
// single critical section guarded by the results mutex, so two concurrent
// calls with an equal canonical key perform at most one search (R1).
func (p *Processor) ParseQueryLine(line string) {
	stems := uniqueSortedStems(line)
	if len(stems) == 0 {
		return
	}
	key := strings.Join(stems, " ")

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.results[key]; ok {
		return
	}
	var found []index.SearchResult
	if p.partial {
		found = p.idx.PartialSearch(stems)
	} else {
		found = p.idx.ExactSearch(stems)
	}
	p.results[key] = found
}

// uniqueSortedStems tokenises and stems line, drops empty stems, dedupes,
// and returns the result in lexicographic order.
func uniqueSortedStems(line string) []string {
	seen := make(map[string]bool)
	var stems []string
	for _, stem := range tokenize.Tokens(line) {
		if stem == "" || seen[stem] {
			continue
		}
		seen[stem] = true
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	return stems
}

// AllResults returns a snapshot of every canonical query processed so far
// mapped to its result list.
func (p *Processor) AllResults() map[string][]index.SearchResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string][]index.SearchResult, len(p.results))
	for k, v := range p.results {
		out[k] = v
	}
	return out
}
