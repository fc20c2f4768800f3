// Package tileset slices a tilesheet image into individual tile bitmaps
// and builds the tile index consumed by the tagging and editor tooling.
package tileset

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// Config describes the tilesheet geometry.
type Config struct {
	TileSize int // tile edge in pixels
	Spacing  int // gap between tiles in the sheet
	Cols     int
	Rows     int
	Scale    int // preview scale factor; <=1 disables previews
}

// DefaultConfig matches the legacy tilesheet layout: 16px tiles with 1px
// spacing on a 32x32 grid.
var DefaultConfig = Config{TileSize: 16, Spacing: 1, Cols: 32, Rows: 32}

// Entry is one sliced tile in the index.
type Entry struct {
	ID       string `json:"id"` // e.g. "tile_5_9"
	GID      uint32 `json:"gid"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	PixelX   int    `json:"pixel_x"`
	PixelY   int    `json:"pixel_y"`
	Filename string `json:"filename"`
}

// IndexMetadata describes the source sheet.
type IndexMetadata struct {
	Source        string `json:"source"`
	TileSize      int    `json:"tile_size"`
	Spacing       int    `json:"spacing"`
	Grid          [2]int `json:"grid"`
	TotalPossible int    `json:"total_possible"`
}

// Index is the tile index document.
type Index struct {
	Metadata       IndexMetadata `json:"metadata"`
	TotalExtracted int           `json:"total_extracted"`
	SkippedEmpty   int           `json:"skipped_empty"`
	Tiles          []Entry       `json:"tiles"`
}

// Split slices the tilesheet at sheetPath into per-tile PNGs under outDir
// and returns the resulting index. Fully transparent tiles are skipped.
// When cfg.Scale > 1, a nearest-neighbor scaled preview is written next to
// each tile (pixel art must not be smoothed).
func Split(sheetPath, outDir string, cfg Config) (*Index, error) {
	f, err := os.Open(sheetPath)
	if err != nil {
		return nil, fmt.Errorf("open tilesheet: %w", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("decode tilesheet %s: %w", sheetPath, err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create tiles dir: %w", err)
	}

	stride := cfg.TileSize + cfg.Spacing
	index := &Index{
		Metadata: IndexMetadata{
			Source:        filepath.Base(sheetPath),
			TileSize:      cfg.TileSize,
			Spacing:       cfg.Spacing,
			Grid:          [2]int{cfg.Cols, cfg.Rows},
			TotalPossible: cfg.Cols * cfg.Rows,
		},
	}

	for row := 0; row < cfg.Rows; row++ {
		for col := 0; col < cfg.Cols; col++ {
			x := col * stride
			y := row * stride
			tile := crop(img, image.Rect(x, y, x+cfg.TileSize, y+cfg.TileSize))

			if isEmptyTile(tile) {
				index.SkippedEmpty++
				continue
			}

			id := fmt.Sprintf("tile_%d_%d", row, col)
			filename := id + ".png"
			if err := writePNG(filepath.Join(outDir, filename), tile); err != nil {
				return nil, err
			}
			if cfg.Scale > 1 {
				preview := scaleNearest(tile, cfg.Scale)
				if err := writePNG(filepath.Join(outDir, id+fmt.Sprintf("@%dx.png", cfg.Scale)), preview); err != nil {
					return nil, err
				}
			}

			// GID convention of the authoring tool: row-major, 1-indexed.
			index.Tiles = append(index.Tiles, Entry{
				ID:       id,
				GID:      uint32(row*cfg.Cols + col + 1),
				Row:      row,
				Col:      col,
				PixelX:   x,
				PixelY:   y,
				Filename: filename,
			})
		}
	}
	index.TotalExtracted = len(index.Tiles)
	return index, nil
}

// WriteIndex persists the index as JSON at path.
func WriteIndex(index *Index, path string) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize tile index: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadIndex loads a tile index document from path.
func ReadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tile index: %w", err)
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse tile index %s: %w", path, err)
	}
	return &index, nil
}

// crop copies a rectangle of src into a fresh RGBA image anchored at 0,0.
func crop(src image.Image, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Copy(out, image.Point{}, src, r, xdraw.Src, nil)
	return out
}

// scaleNearest enlarges a tile by an integer factor without interpolation.
func scaleNearest(src *image.RGBA, factor int) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), src, b, xdraw.Src, nil)
	return out
}

// isEmptyTile reports whether every pixel is fully transparent.
func isEmptyTile(tile *image.RGBA) bool {
	b := tile.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := tile.At(x, y).RGBA(); a != 0 {
				return false
			}
		}
	}
	return true
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
