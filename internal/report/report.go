// Package report implements component C11: pretty-printed JSON output of
// the index, the per-location word counts, and query results. Map ordering
// falls out of encoding/json's own sorted-key emission for map[string]V,
// which coincides with the lexicographic ordering the index already
// requires, so the writer marshals the accessor-returned snapshots as-is.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mfenwick/corpusdex/internal/index"
)

// Score formats a search-result score with exactly eight digits after the
// decimal point, using Go's native round-half-to-even float formatting
// rather than the half-up rounding a Java-derived implementation would use.
type Score float64

// MarshalJSON renders s as a bare JSON number with eight decimal digits.
func (s Score) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(s), 'f', 8, 64), nil
}

// resultEntry is the JSON shape of one query match: {"count":n,"score":s,"where":"loc"}.
type resultEntry struct {
	Count int    `json:"count"`
	Score Score  `json:"score"`
	Where string `json:"where"`
}

func toResultEntries(results []index.SearchResult) []resultEntry {
	out := make([]resultEntry, len(results))
	for i, r := range results {
		out[i] = resultEntry{Count: r.MatchCount, Score: Score(r.Score), Where: r.Location}
	}
	return out
}

// WriteCounts writes the Location -> word-count mapping to path as pretty
// JSON.
func WriteCounts(path string, idx *index.Index) error {
	return writeJSON(path, idx.GetWordCounts())
}

// WriteIndex writes the full Word -> Location -> Positions structure to
// path as pretty JSON.
func WriteIndex(path string, idx *index.Index) error {
	return writeJSON(path, idx.Snapshot())
}

// WriteResults writes the canonical-query -> result-list mapping to path as
// pretty JSON, each result rendered as {"count","score","where"}.
func WriteResults(path string, results map[string][]index.SearchResult) error {
	out := make(map[string][]resultEntry, len(results))
	for query, rs := range results {
		out[query] = toResultEntries(rs)
	}
	return writeJSON(path, out)
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
