package tileset

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeSheet renders a small tilesheet where fill decides which tiles get a
// visible pixel. Geometry follows cfg.
func writeSheet(t *testing.T, path string, cfg Config, fill func(row, col int) bool) {
	t.Helper()
	stride := cfg.TileSize + cfg.Spacing
	w := cfg.Cols*stride - cfg.Spacing
	h := cfg.Rows*stride - cfg.Spacing
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for row := 0; row < cfg.Rows; row++ {
		for col := 0; col < cfg.Cols; col++ {
			if !fill(row, col) {
				continue
			}
			img.Set(col*stride, row*stride, color.RGBA{R: 255, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create sheet: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode sheet: %v", err)
	}
	f.Close()
}

func TestSplitBasic(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{TileSize: 4, Spacing: 1, Cols: 3, Rows: 2}
	sheet := filepath.Join(dir, "sheet.png")
	writeSheet(t, sheet, cfg, func(row, col int) bool { return true })

	outDir := filepath.Join(dir, "tiles")
	index, err := Split(sheet, outDir, cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if index.TotalExtracted != 6 {
		t.Errorf("TotalExtracted = %d, want 6", index.TotalExtracted)
	}
	if index.SkippedEmpty != 0 {
		t.Errorf("SkippedEmpty = %d, want 0", index.SkippedEmpty)
	}
	if index.Metadata.Source != "sheet.png" {
		t.Errorf("Source = %q", index.Metadata.Source)
	}
	if index.Metadata.Grid != [2]int{3, 2} {
		t.Errorf("Grid = %v", index.Metadata.Grid)
	}
	if index.Metadata.TotalPossible != 6 {
		t.Errorf("TotalPossible = %d", index.Metadata.TotalPossible)
	}

	// Row-major 1-indexed GIDs, filenames on disk.
	want := []struct {
		id  string
		gid uint32
	}{
		{"tile_0_0", 1}, {"tile_0_1", 2}, {"tile_0_2", 3},
		{"tile_1_0", 4}, {"tile_1_1", 5}, {"tile_1_2", 6},
	}
	for i, w := range want {
		e := index.Tiles[i]
		if e.ID != w.id || e.GID != w.gid {
			t.Errorf("tile %d = %s gid %d, want %s gid %d", i, e.ID, e.GID, w.id, w.gid)
		}
		if _, err := os.Stat(filepath.Join(outDir, e.Filename)); err != nil {
			t.Errorf("tile file %s missing: %v", e.Filename, err)
		}
	}
}

func TestSplitSkipsEmptyTiles(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{TileSize: 4, Spacing: 0, Cols: 2, Rows: 2}
	sheet := filepath.Join(dir, "sheet.png")
	// Only the diagonal has content.
	writeSheet(t, sheet, cfg, func(row, col int) bool { return row == col })

	index, err := Split(sheet, filepath.Join(dir, "tiles"), cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if index.TotalExtracted != 2 {
		t.Errorf("TotalExtracted = %d, want 2", index.TotalExtracted)
	}
	if index.SkippedEmpty != 2 {
		t.Errorf("SkippedEmpty = %d, want 2", index.SkippedEmpty)
	}
	// GIDs still reflect sheet position, not extraction order.
	if index.Tiles[0].GID != 1 || index.Tiles[1].GID != 4 {
		t.Errorf("gids = %d, %d, want 1, 4", index.Tiles[0].GID, index.Tiles[1].GID)
	}
}

func TestSplitWritesPreviews(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{TileSize: 2, Spacing: 0, Cols: 1, Rows: 1, Scale: 4}
	sheet := filepath.Join(dir, "sheet.png")
	writeSheet(t, sheet, cfg, func(row, col int) bool { return true })

	outDir := filepath.Join(dir, "tiles")
	if _, err := Split(sheet, outDir, cfg); err != nil {
		t.Fatalf("Split: %v", err)
	}

	f, err := os.Open(filepath.Join(outDir, "tile_0_0@4x.png"))
	if err != nil {
		t.Fatalf("preview missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("preview bounds = %v, want 8x8", b)
	}
}

func TestSplitMissingSheet(t *testing.T) {
	if _, err := Split(filepath.Join(t.TempDir(), "nope.png"), t.TempDir(), DefaultConfig); err == nil {
		t.Fatal("expected error for missing tilesheet")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	index := &Index{
		Metadata: IndexMetadata{
			Source:        "sheet.png",
			TileSize:      16,
			Spacing:       1,
			Grid:          [2]int{32, 32},
			TotalPossible: 1024,
		},
		TotalExtracted: 1,
		SkippedEmpty:   1023,
		Tiles: []Entry{
			{ID: "tile_2_3", GID: 68, Row: 2, Col: 3, PixelX: 51, PixelY: 34, Filename: "tile_2_3.png"},
		},
	}

	path := filepath.Join(dir, "tile_index.json")
	if err := WriteIndex(index, path); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	got, err := ReadIndex(path)
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if got.Metadata != index.Metadata {
		t.Errorf("metadata = %+v, want %+v", got.Metadata, index.Metadata)
	}
	if len(got.Tiles) != 1 || got.Tiles[0] != index.Tiles[0] {
		t.Errorf("tiles = %+v", got.Tiles)
	}
	if got.SkippedEmpty != 1023 {
		t.Errorf("SkippedEmpty = %d", got.SkippedEmpty)
	}
}

func TestReadIndexMissing(t *testing.T) {
	if _, err := ReadIndex(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing index")
	}
}

func TestReadIndexCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadIndex(path); err == nil {
		t.Fatal("expected error for corrupt index")
	}
}
