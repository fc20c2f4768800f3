package tagger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/imyousuf/TileSage/internal/catalog"
	"github.com/imyousuf/TileSage/internal/tileset"
	"github.com/imyousuf/TileSage/pkg/llm"
)

// fakeClient answers the category prompt then the edge prompt, per tile.
type fakeClient struct {
	calls     int
	responses []string
	err       error
}

func (f *fakeClient) Chat(ctx context.Context, systemPrompt string, messages []llm.Message) (*llm.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	resp := f.responses[f.calls%len(f.responses)]
	f.calls++
	return &llm.Response{Content: resp}, nil
}

func (f *fakeClient) Model() string    { return "fake" }
func (f *fakeClient) Provider() string { return "fake" }
func (f *fakeClient) Close() error     { return nil }

func TestSalvageJSON(t *testing.T) {
	var out struct {
		Category string `json:"category"`
	}

	if !salvageJSON(`{"category": "grass"}`, &out) || out.Category != "grass" {
		t.Errorf("exact parse failed: %+v", out)
	}

	out.Category = ""
	prose := "Sure! Here is the JSON you asked for:\n```\n{\"category\": \"water\"}\n```\nLet me know."
	if !salvageJSON(prose, &out) || out.Category != "water" {
		t.Errorf("brace-window salvage failed: %+v", out)
	}

	if salvageJSON("no json here at all", &out) {
		t.Error("salvage must fail without braces")
	}
	if salvageJSON("{broken", &out) {
		t.Error("salvage must fail on unbalanced braces")
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.json")

	cp := &Checkpoint{Tagged: map[string]Result{
		"tile_0_0": {Category: "grass", Description: "green", Edges: map[string]string{"top": "grass"}},
	}}
	if err := cp.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	got, ok := loaded.Tagged["tile_0_0"]
	if !ok || got.Category != "grass" || got.Edges["top"] != "grass" {
		t.Errorf("loaded = %+v", loaded.Tagged)
	}

	if err := RemoveCheckpoint(path); err != nil {
		t.Fatalf("RemoveCheckpoint: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("checkpoint should be removed")
	}
}

func TestLoadCheckpointMissing(t *testing.T) {
	cp, err := LoadCheckpoint(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("missing checkpoint must not error: %v", err)
	}
	if len(cp.Tagged) != 0 {
		t.Errorf("expected empty checkpoint, got %+v", cp.Tagged)
	}
}

func testIndex(t *testing.T, dir string, ids ...string) *tileset.Index {
	t.Helper()
	index := &tileset.Index{}
	for i, id := range ids {
		filename := id + ".png"
		// Content doesn't matter; the fake client never looks at it.
		if err := os.WriteFile(filepath.Join(dir, filename), []byte("png"), 0644); err != nil {
			t.Fatal(err)
		}
		index.Tiles = append(index.Tiles, tileset.Entry{
			ID: id, GID: uint32(i + 1), Filename: filename,
		})
	}
	index.TotalExtracted = len(ids)
	return index
}

func TestRunTagsAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	index := testIndex(t, dir, "tile_0_0", "tile_0_1")
	cpPath := filepath.Join(dir, "cp.json")

	cat, err := catalog.Open(filepath.Join(dir, "catalog"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer cat.Close()

	client := &fakeClient{responses: []string{
		`{"category": "grass", "description": "a grass tile"}`,
		`{"top": "grass", "bottom": "grass", "left": "grass", "right": "grass"}`,
	}}

	tg := New(Config{
		Client:         client,
		TilesDir:       dir,
		CheckpointPath: cpPath,
		Logger:         func(string, ...any) {},
	})

	stats, err := tg.Run(context.Background(), index, cat)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Tagged != 2 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}

	tile, err := cat.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("catalog get: %v", err)
	}
	if tile.Category != "grass" || tile.Edges["top"] != "grass" {
		t.Errorf("tagged tile = %+v", tile)
	}

	// Checkpoint is removed after a completed run.
	if _, err := os.Stat(cpPath); !os.IsNotExist(err) {
		t.Error("checkpoint should be gone after success")
	}
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	dir := t.TempDir()
	index := testIndex(t, dir, "tile_0_0", "tile_0_1")
	cpPath := filepath.Join(dir, "cp.json")

	// Pre-seed a checkpoint covering the first tile.
	cp := &Checkpoint{Tagged: map[string]Result{
		"tile_0_0": {Category: "water", Edges: map[string]string{}},
	}}
	if err := cp.Save(cpPath); err != nil {
		t.Fatal(err)
	}

	cat, err := catalog.Open(filepath.Join(dir, "catalog"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer cat.Close()

	client := &fakeClient{responses: []string{
		`{"category": "grass", "description": ""}`,
		`{}`,
	}}

	tg := New(Config{
		Client:         client,
		TilesDir:       dir,
		CheckpointPath: cpPath,
		Logger:         func(string, ...any) {},
	})

	stats, err := tg.Run(context.Background(), index, cat)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Skipped != 1 || stats.Tagged != 1 {
		t.Errorf("stats = %+v", stats)
	}
	// Only the untagged tile hit the oracle: two prompts for one tile.
	if client.calls != 2 {
		t.Errorf("oracle calls = %d, want 2", client.calls)
	}

	// The checkpointed result still lands in the catalog.
	tile, err := cat.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("catalog get: %v", err)
	}
	if tile.Category != "water" {
		t.Errorf("resumed tile category = %q, want water", tile.Category)
	}
}

func TestRunRecordsUnparseableResponses(t *testing.T) {
	dir := t.TempDir()
	index := testIndex(t, dir, "tile_0_0")
	cpPath := filepath.Join(dir, "cp.json")

	cat, err := catalog.Open(filepath.Join(dir, "catalog"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer cat.Close()

	client := &fakeClient{responses: []string{"I cannot describe this tile."}}

	tg := New(Config{
		Client:         client,
		TilesDir:       dir,
		CheckpointPath: cpPath,
		Logger:         func(string, ...any) {},
	})

	stats, err := tg.Run(context.Background(), index, cat)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Tagged != 1 {
		t.Errorf("stats = %+v", stats)
	}

	tile, err := cat.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("catalog get: %v", err)
	}
	// Unparseable answers fall back to "unknown" rather than failing.
	if tile.Category != "unknown" {
		t.Errorf("category = %q, want unknown", tile.Category)
	}
}
