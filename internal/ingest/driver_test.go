package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mfenwick/corpusdex/internal/index"
)

type stubFetcher struct {
	text string
	err  error
}

func (s stubFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	return s.text, s.err
}

func TestIngestFileAssignsConsecutivePositions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.txt")
	if err := os.WriteFile(path, []byte("one two three"), 0o644); err != nil {
		t.Fatal(err)
	}

	shared := index.New()
	d := NewDriver(shared, stubFetcher{})
	if err := d.IngestFile(path); err != nil {
		t.Fatal(err)
	}

	if got := shared.GetWordCount(path); got != 3 {
		t.Fatalf("word count = %d, want 3", got)
	}
	if got := shared.GetPositions("one", path); len(got) != 1 || got[0] != 1 {
		t.Fatalf("positions(one) = %v, want [1]", got)
	}
	if got := shared.GetPositions("two", path); len(got) != 1 || got[0] != 2 {
		t.Fatalf("positions(two) = %v, want [2]", got)
	}
	if got := shared.GetPositions("three", path); len(got) != 1 || got[0] != 3 {
		t.Fatalf("positions(three) = %v, want [3]", got)
	}
}

func TestIngestFileDelimiterOnlyLineDoesNotShiftPositions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nums.txt")
	if err := os.WriteFile(path, []byte("alpha\n---\nbeta"), 0o644); err != nil {
		t.Fatal(err)
	}

	shared := index.New()
	d := NewDriver(shared, stubFetcher{})
	if err := d.IngestFile(path); err != nil {
		t.Fatal(err)
	}

	if got := shared.GetPositions("alpha", path); len(got) != 1 || got[0] != 1 {
		t.Fatalf("positions(alpha) = %v, want [1]", got)
	}
	if got := shared.GetPositions("beta", path); len(got) != 1 || got[0] != 2 {
		t.Fatalf("positions(beta) = %v, want [2]", got)
	}
}

func TestIngestURLMergesStrippedText(t *testing.T) {
	shared := index.New()
	d := NewDriver(shared, stubFetcher{text: "<html><body><p>hello world</p></body></html>"})

	if err := d.IngestURL(context.Background(), "https://example.com/"); err != nil {
		t.Fatal(err)
	}

	if !shared.ContainsLocation("hello", "https://example.com/") {
		t.Fatalf("expected hello to be indexed under the URL location")
	}
	if !shared.ContainsLocation("world", "https://example.com/") {
		t.Fatalf("expected world to be indexed under the URL location")
	}
}

func TestIngestURLFetchFailureIndexesNothing(t *testing.T) {
	shared := index.New()
	d := NewDriver(shared, stubFetcher{err: errors.New("boom")})

	err := d.IngestURL(context.Background(), "https://example.com/")
	if err == nil {
		t.Fatal("expected an error from a failed fetch")
	}
	if shared.NumUniqueWords() != 0 {
		t.Fatalf("expected nothing indexed on fetch failure, got %d words", shared.NumUniqueWords())
	}
}
