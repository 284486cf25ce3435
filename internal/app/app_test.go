package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeCorpus(t *testing.T, dir string, numFiles, tokensPerFile int) {
	t.Helper()
	for i := 0; i < numFiles; i++ {
		path := filepath.Join(dir, fmt.Sprintf("doc%03d.txt", i))
		var buf bytes.Buffer
		for j := 0; j < tokensPerFile; j++ {
			fmt.Fprintf(&buf, "word%d ", j%37)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func runOnce(t *testing.T, corpusDir string, threads int) string {
	t.Helper()
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.json")

	a := New(Config{
		TextPath:   corpusDir,
		Threads:    threads,
		IndexPath:  indexPath,
		CountsPath: filepath.Join(dir, "counts.json"),
	})
	var out bytes.Buffer
	if err := a.Run(context.Background(), &out); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestIndexJSONIsByteIdenticalAcrossThreadCounts(t *testing.T) {
	corpusDir := t.TempDir()
	writeCorpus(t, corpusDir, 50, 1000)

	single := runOnce(t, corpusDir, 1)
	threaded := runOnce(t, corpusDir, 8)

	if single != threaded {
		t.Fatal("expected byte-identical index.json across thread counts")
	}
}

func TestQueryDedupeEndToEnd(t *testing.T) {
	corpusDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(corpusDir, "a.txt"), []byte("the cat sat on the dog"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	queryPath := filepath.Join(dir, "queries.txt")
	if err := os.WriteFile(queryPath, []byte("cat dog\ndog cat\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	resultsPath := filepath.Join(dir, "results.json")

	a := New(Config{
		TextPath:    corpusDir,
		QueryPath:   queryPath,
		ResultsPath: resultsPath,
		CountsPath:  filepath.Join(dir, "counts.json"),
		IndexPath:   filepath.Join(dir, "index.json"),
	})
	var out bytes.Buffer
	if err := a.Run(context.Background(), &out); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 {
		t.Fatalf("got %d distinct query entries, want 1: %v", len(decoded), decoded)
	}
	if _, ok := decoded["cat dog"]; !ok {
		t.Fatalf("expected canonical key %q in results, got %v", "cat dog", decoded)
	}
}
