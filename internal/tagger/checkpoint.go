package tagger

import (
	"encoding/json"
	"fmt"
	"os"
)

// Result is the oracle's answer for one tile.
type Result struct {
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Edges       map[string]string `json:"edges"`

	// Raw responses are kept only when parsing failed, for inspection.
	RawCategoryResponse string `json:"raw_category_response,omitempty"`
	RawEdgeResponse     string `json:"raw_edge_response,omitempty"`
}

// Checkpoint holds partial tagging results so an interrupted run resumes
// from where it stopped instead of re-querying the oracle. Keys are tile
// index IDs (e.g. "tile_5_9").
type Checkpoint struct {
	Tagged map[string]Result `json:"tagged"`
}

// LoadCheckpoint reads a checkpoint file. A missing file yields an empty
// checkpoint, not an error: a fresh run has nothing to resume.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Checkpoint{Tagged: make(map[string]Result)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}
	if cp.Tagged == nil {
		cp.Tagged = make(map[string]Result)
	}
	return &cp, nil
}

// Save writes the checkpoint atomically.
func (cp *Checkpoint) Save(path string) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize checkpoint: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Remove deletes the checkpoint file after a completed run.
func RemoveCheckpoint(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
