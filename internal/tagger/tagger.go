// Package tagger runs the external classification oracle over sliced tile
// bitmaps, producing category/description and per-edge labels. Its output
// feeds the tile catalog and the tile_info section of the rule set; the
// adjacency matcher itself never depends on it.
package tagger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imyousuf/TileSage/internal/catalog"
	"github.com/imyousuf/TileSage/internal/tileset"
	"github.com/imyousuf/TileSage/pkg/llm"
)

const categoryPrompt = `This is a 16x16 pixel art tile from a game tileset.
Classify this tile and describe it briefly.

Reply ONLY in this exact JSON format, no other text:
{"category": "<one of: terrain, building, character, item, UI, decoration, nature, vehicle, weapon, tool, furniture, wall, floor, door, window, water, sky, underground>", "description": "<brief English description, 3-8 words>"}`

const edgePrompt = `This is a 16x16 pixel art tile from a game tileset.
Analyze the visual pattern at each of the 4 edges of this tile.
For each edge, describe what type of content meets the border.

Reply ONLY in this exact JSON format, no other text:
{"top": "<edge type>", "bottom": "<edge type>", "left": "<edge type>", "right": "<edge type>"}

Use these edge types: empty, solid, ground_top, ground_bottom, wall_left, wall_right, wall_top, wall_bottom, grass, sky, water_top, water_bottom, trunk, foliage, roof, floor, platform, mixed`

// Config holds configuration for a tagging run.
type Config struct {
	Client             llm.Client
	TilesDir           string
	CheckpointPath     string
	CheckpointInterval int  // save every N tiles; <=0 uses 50
	Reset              bool // ignore an existing checkpoint
	Logger             func(format string, args ...any)
}

// Stats summarizes a tagging run.
type Stats struct {
	Tagged  int // tiles tagged in this run
	Skipped int // already present in the checkpoint
	Errors  []string
}

// Tagger drives the oracle over a tile index.
type Tagger struct {
	client   llm.Client
	tilesDir string
	cpPath   string
	interval int
	reset    bool
	log      func(format string, args ...any)
}

// New creates a Tagger with the given configuration.
func New(cfg Config) *Tagger {
	logFn := cfg.Logger
	if logFn == nil {
		logFn = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	interval := cfg.CheckpointInterval
	if interval <= 0 {
		interval = 50
	}
	return &Tagger{
		client:   cfg.Client,
		tilesDir: cfg.TilesDir,
		cpPath:   cfg.CheckpointPath,
		interval: interval,
		reset:    cfg.Reset,
		log:      logFn,
	}
}

// Run tags every tile in the index that the checkpoint has not already
// covered, writing each result into the catalog. The checkpoint is saved
// every interval tiles and removed once the run completes, so a restart
// after an interruption resumes from the last saved point.
func (t *Tagger) Run(ctx context.Context, index *tileset.Index, cat *catalog.Store) (*Stats, error) {
	cp := &Checkpoint{Tagged: make(map[string]Result)}
	if !t.reset {
		loaded, err := LoadCheckpoint(t.cpPath)
		if err != nil {
			return nil, err
		}
		cp = loaded
		if len(cp.Tagged) > 0 {
			t.log("resuming from checkpoint: %d tiles already tagged", len(cp.Tagged))
		}
	}

	stats := &Stats{}
	sinceSave := 0
	for _, entry := range index.Tiles {
		if err := ctx.Err(); err != nil {
			// Interrupted: persist progress before giving up.
			if saveErr := cp.Save(t.cpPath); saveErr != nil {
				t.log("checkpoint save on interrupt: %v", saveErr)
			}
			return stats, err
		}

		res, done := cp.Tagged[entry.ID]
		if done {
			stats.Skipped++
		} else {
			tagged, err := t.tagOne(ctx, entry)
			if err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", entry.ID, err))
				continue
			}
			res = *tagged
			cp.Tagged[entry.ID] = res
			stats.Tagged++
			sinceSave++
			if sinceSave >= t.interval {
				if err := cp.Save(t.cpPath); err != nil {
					return stats, err
				}
				sinceSave = 0
				t.log("checkpoint saved (%d/%d tiles)", len(cp.Tagged), len(index.Tiles))
			}
		}

		tile := &catalog.Tile{
			GID:         entry.GID,
			Label:       entry.ID,
			Row:         entry.Row,
			Col:         entry.Col,
			PixelX:      entry.PixelX,
			PixelY:      entry.PixelY,
			Filename:    entry.Filename,
			Category:    res.Category,
			Description: res.Description,
			Edges:       res.Edges,
		}
		if err := cat.Put(ctx, tile); err != nil {
			return stats, fmt.Errorf("catalog put %s: %w", entry.ID, err)
		}
	}

	if err := RemoveCheckpoint(t.cpPath); err != nil {
		t.log("remove checkpoint: %v", err)
	}
	return stats, nil
}

// tagOne runs both oracle prompts for a single tile image.
func (t *Tagger) tagOne(ctx context.Context, entry tileset.Entry) (*Result, error) {
	imgData, err := os.ReadFile(filepath.Join(t.tilesDir, entry.Filename))
	if err != nil {
		return nil, fmt.Errorf("read tile image: %w", err)
	}
	image := llm.ImageAttachment{MIMEType: "image/png", Data: imgData}

	res := &Result{
		Category:    "unknown",
		Description: "",
		Edges: map[string]string{
			"top": "unknown", "bottom": "unknown", "left": "unknown", "right": "unknown",
		},
	}

	catResp, err := t.query(ctx, image, categoryPrompt)
	if err != nil {
		return nil, err
	}
	var catData struct {
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if salvageJSON(catResp, &catData) {
		if catData.Category != "" {
			res.Category = catData.Category
		}
		res.Description = catData.Description
	} else {
		res.RawCategoryResponse = catResp
	}

	edgeResp, err := t.query(ctx, image, edgePrompt)
	if err != nil {
		return nil, err
	}
	var edgeData map[string]string
	if salvageJSON(edgeResp, &edgeData) {
		for _, side := range []string{"top", "bottom", "left", "right"} {
			if v, ok := edgeData[side]; ok && v != "" {
				res.Edges[side] = v
			}
		}
	} else {
		res.RawEdgeResponse = edgeResp
	}

	return res, nil
}

func (t *Tagger) query(ctx context.Context, image llm.ImageAttachment, prompt string) (string, error) {
	resp, err := t.client.Chat(ctx, "", []llm.Message{{
		Role:    llm.RoleUser,
		Content: prompt,
		Images:  []llm.ImageAttachment{image},
	}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// salvageJSON tries an exact parse first, then the outermost brace window,
// since models wrap their JSON in prose often enough to matter.
func salvageJSON(text string, out any) bool {
	if json.Unmarshal([]byte(text), out) == nil {
		return true
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return json.Unmarshal([]byte(text[start:end+1]), out) == nil
	}
	return false
}
