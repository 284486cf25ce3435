// Package index implements the inverted index: Word -> Location -> ordered
// set of Position, plus a Location -> word-count side table. A single Index
// type serves both the single-threaded and concurrent variants of the spec,
// distinguished only by the locker it is constructed with (see New and
// NewConcurrent) rather than by a second type or an inheritance hierarchy.
package index

import (
	"sort"
	"strings"
	"sync"
)

// locker is satisfied by *sync.RWMutex and by noopLocker. Parameterising the
// Index on this interface keeps every accessor's locking decision in one
// place instead of duplicating the algorithm for a locked and an unlocked
// variant.
type locker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type noopLocker struct{}

func (noopLocker) Lock()    {}
func (noopLocker) Unlock()  {}
func (noopLocker) RLock()   {}
func (noopLocker) RUnlock() {}

// postingList is an ordered set of 1-based positions, unique and ascending.
type postingList struct {
	positions []int
}

func (p *postingList) add(pos int) {
	i := sort.SearchInts(p.positions, pos)
	if i < len(p.positions) && p.positions[i] == pos {
		return
	}
	p.positions = append(p.positions, 0)
	copy(p.positions[i+1:], p.positions[i:])
	p.positions[i] = pos
}

func (p *postingList) contains(pos int) bool {
	i := sort.SearchInts(p.positions, pos)
	return i < len(p.positions) && p.positions[i] == pos
}

type wordPostings struct {
	locations map[string]*postingList
}

// SearchResult is the value object returned by ExactSearch and
// PartialSearch: a document, the total number of positions at which matched
// words occur in it, and its normalised relevance score.
type SearchResult struct {
	Location   string
	MatchCount int
	Score      float64
}

// Index is the authoritative inverted-index data model (component C5 of the
// spec). Constructed with New, it is safe for single-threaded use only.
// Constructed with NewConcurrent, every operation below takes the
// appropriate side of a multi-reader/single-writer lock (component C6) and
// is safe under concurrent ingestion and query.
type Index struct {
	mu      locker
	words   []string // sorted, maintained on every insert of a new word
	entries map[string]*wordPostings
	counts  map[string]int
}

// New returns an empty Index for single-threaded use.
func New() *Index {
	return &Index{
		mu:      noopLocker{},
		entries: make(map[string]*wordPostings),
		counts:  make(map[string]int),
	}
}

// NewConcurrent returns an empty Index safe for concurrent readers and a
// single writer at a time.
func NewConcurrent() *Index {
	idx := New()
	idx.mu = &sync.RWMutex{}
	return idx
}

// Insert ensures index[word][location] exists and adds position, then
// updates counts[location] to the max of its current value and position.
// Insert cannot fail.
func (idx *Index) Insert(word, location string, position int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.insertLocked(word, location, position)
}

func (idx *Index) insertLocked(word, location string, position int) {
	we, ok := idx.entries[word]
	if !ok {
		we = &wordPostings{locations: make(map[string]*postingList)}
		idx.entries[word] = we
		idx.insertWordSorted(word)
	}
	pl, ok := we.locations[location]
	if !ok {
		pl = &postingList{}
		we.locations[location] = pl
	}
	pl.add(position)
	if position > idx.counts[location] {
		idx.counts[location] = position
	}
}

func (idx *Index) insertWordSorted(word string) {
	i := sort.SearchStrings(idx.words, word)
	idx.words = append(idx.words, "")
	copy(idx.words[i+1:], idx.words[i:])
	idx.words[i] = word
}

// Merge unions every (word, location, positions) triple from other into idx,
// and applies counts[location] = max(counts[location], other.counts[location])
// for every location in other. The caller guarantees other did not ingest
// any location already present in idx; positions still merge correctly
// otherwise, but the resulting word counts would no longer mean "total
// tokens in this document".
func (idx *Index) Merge(other *Index) {
	type posting struct {
		location  string
		positions []int
	}
	type wordData struct {
		word     string
		postings []posting
	}

	other.mu.RLock()
	snapshot := make([]wordData, 0, len(other.words))
	for _, w := range other.words {
		we := other.entries[w]
		postings := make([]posting, 0, len(we.locations))
		for loc, pl := range we.locations {
			cp := append([]int(nil), pl.positions...)
			postings = append(postings, posting{location: loc, positions: cp})
		}
		snapshot = append(snapshot, wordData{word: w, postings: postings})
	}
	countsCopy := make(map[string]int, len(other.counts))
	for loc, c := range other.counts {
		countsCopy[loc] = c
	}
	other.mu.RUnlock()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, wd := range snapshot {
		for _, p := range wd.postings {
			for _, pos := range p.positions {
				idx.insertLocked(wd.word, p.location, pos)
			}
		}
	}
	for loc, c := range countsCopy {
		if cur, ok := idx.counts[loc]; !ok || c > cur {
			idx.counts[loc] = c
		}
	}
}

type resultAccum struct {
	location   string
	matchCount int
}

func (idx *Index) accumulate(we *wordPostings, acc map[string]*resultAccum) {
	for loc, pl := range we.locations {
		a, ok := acc[loc]
		if !ok {
			a = &resultAccum{location: loc}
			acc[loc] = a
		}
		a.matchCount += len(pl.positions)
	}
}

func (idx *Index) finalizeResults(acc map[string]*resultAccum) []SearchResult {
	results := make([]SearchResult, 0, len(acc))
	for loc, a := range acc {
		wc := idx.counts[loc]
		var score float64
		if wc > 0 {
			score = float64(a.matchCount) / float64(wc)
		}
		results = append(results, SearchResult{Location: loc, MatchCount: a.matchCount, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		return lessResult(results[i], results[j])
	})
	return results
}

// lessResult implements the total, deterministic result ordering: score
// descending, then matchCount descending, then location ascending
// case-insensitive.
func lessResult(a, b SearchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.MatchCount != b.MatchCount {
		return a.MatchCount > b.MatchCount
	}
	return strings.ToLower(a.Location) < strings.ToLower(b.Location)
}

// ExactSearch matches only query stems that appear verbatim as index keys.
// Each location contributes at most one result across the whole query.
func (idx *Index) ExactSearch(queries []string) []SearchResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	acc := make(map[string]*resultAccum)
	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		if we, ok := idx.entries[q]; ok {
			idx.accumulate(we, acc)
		}
	}
	return idx.finalizeResults(acc)
}

// PartialSearch matches any index key that begins with a query stem. For
// each query word w, it scans the ordered word list starting at the first
// key >= w (a tail-range scan, which is why the word list must stay
// sorted), accumulating every key that begins with w until the first key
// that does not.
func (idx *Index) PartialSearch(queries []string) []SearchResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	acc := make(map[string]*resultAccum)
	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		i := sort.SearchStrings(idx.words, q)
		for ; i < len(idx.words); i++ {
			w := idx.words[i]
			if !strings.HasPrefix(w, q) {
				break
			}
			idx.accumulate(idx.entries[w], acc)
		}
	}
	return idx.finalizeResults(acc)
}

// ContainsWord reports whether word has ever been inserted.
func (idx *Index) ContainsWord(word string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.entries[word]
	return ok
}

// ContainsLocation reports whether word has an entry for location.
func (idx *Index) ContainsLocation(word, location string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	we, ok := idx.entries[word]
	if !ok {
		return false
	}
	_, ok = we.locations[location]
	return ok
}

// ContainsPosition reports whether word occurs at position within location.
func (idx *Index) ContainsPosition(word, location string, position int) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	we, ok := idx.entries[word]
	if !ok {
		return false
	}
	pl, ok := we.locations[location]
	if !ok {
		return false
	}
	return pl.contains(position)
}

// NumUniqueWords returns the number of distinct words in the index.
func (idx *Index) NumUniqueWords() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.words)
}

// NumLocations returns the number of distinct locations word occurs in, or
// 0 if word is absent.
func (idx *Index) NumLocations(word string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	we, ok := idx.entries[word]
	if !ok {
		return 0
	}
	return len(we.locations)
}

// NumPositions returns the number of occurrences of word in location, or 0
// if absent.
func (idx *Index) NumPositions(word, location string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	we, ok := idx.entries[word]
	if !ok {
		return 0
	}
	pl, ok := we.locations[location]
	if !ok {
		return 0
	}
	return len(pl.positions)
}

// GetWordCount returns the word count of location, or 0 if it has never
// been ingested.
func (idx *Index) GetWordCount(location string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.counts[location]
}

// GetPositions returns a copy of the ordered positions of word in location,
// or an empty slice if absent.
func (idx *Index) GetPositions(word, location string) []int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	we, ok := idx.entries[word]
	if !ok {
		return []int{}
	}
	pl, ok := we.locations[location]
	if !ok {
		return []int{}
	}
	return append([]int(nil), pl.positions...)
}

// GetLocations returns a sorted copy of the locations word occurs in.
func (idx *Index) GetLocations(word string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	we, ok := idx.entries[word]
	if !ok {
		return []string{}
	}
	locs := make([]string, 0, len(we.locations))
	for loc := range we.locations {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	return locs
}

// GetWords returns a sorted copy of every word in the index.
func (idx *Index) GetWords() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]string(nil), idx.words...)
}

// GetWordCounts returns a copy of the full Location -> word count mapping.
func (idx *Index) GetWordCounts() map[string]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[string]int, len(idx.counts))
	for loc, c := range idx.counts {
		out[loc] = c
	}
	return out
}

// Snapshot returns a deep copy of the full Word -> Location -> Positions
// structure, suitable for direct JSON marshalling (encoding/json sorts
// map[string]V keys, which coincides with the lexicographic ordering this
// structure requires).
func (idx *Index) Snapshot() map[string]map[string][]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[string]map[string][]int, len(idx.words))
	for _, w := range idx.words {
		we := idx.entries[w]
		inner := make(map[string][]int, len(we.locations))
		for loc, pl := range we.locations {
			inner[loc] = append([]int(nil), pl.positions...)
		}
		out[w] = inner
	}
	return out
}
