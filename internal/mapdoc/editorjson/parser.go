// Package editorjson parses the tile editor's JSON map format: a single
// layer of base identities plus an optional per-cell transform grid.
package editorjson

import (
	"encoding/json"
	"fmt"

	"github.com/imyousuf/TileSage/internal/mapdoc"
	"github.com/imyousuf/TileSage/internal/tiled"
)

// EditorParser parses editor-format JSON map documents.
type EditorParser struct{}

// NewParser creates a new editor JSON parser.
func NewParser() *EditorParser {
	return &EditorParser{}
}

func (p *EditorParser) Format() string {
	return "editor"
}

func (p *EditorParser) Extensions() []string {
	return []string{".json"}
}

// editorMap is the editor's on-disk shape. Transforms entries are
// [rotation, flipH, flipV] triples parallel to the grid.
type editorMap struct {
	Width      int                    `json:"width"`
	Height     int                    `json:"height"`
	Grid       [][]uint32             `json:"grid"`
	Transforms [][][3]json.RawMessage `json:"transforms,omitempty"`
}

func (p *EditorParser) Parse(name string, content []byte) (*mapdoc.Document, error) {
	var m editorMap
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("parsing editor map %s: %w", name, err)
	}
	if m.Width < 0 || m.Height < 0 {
		return nil, &mapdoc.MalformedMapError{
			Document: name, Layer: "main", Row: -1,
			Reason: fmt.Sprintf("negative dimensions %dx%d", m.Width, m.Height),
		}
	}
	if len(m.Grid) != m.Height {
		return nil, &mapdoc.MalformedMapError{
			Document: name, Layer: "main", Row: -1,
			Reason: fmt.Sprintf("declared height %d but grid has %d rows", m.Height, len(m.Grid)),
		}
	}
	if m.Transforms != nil && len(m.Transforms) != m.Height {
		return nil, &mapdoc.MalformedMapError{
			Document: name, Layer: "main", Row: -1,
			Reason: fmt.Sprintf("transform grid has %d rows, expected %d", len(m.Transforms), m.Height),
		}
	}

	cells := make([][]tiled.Key, m.Height)
	for r, row := range m.Grid {
		if len(row) != m.Width {
			return nil, &mapdoc.MalformedMapError{
				Document: name, Layer: "main", Row: r,
				Reason: fmt.Sprintf("declared width %d but row has %d values", m.Width, len(row)),
			}
		}
		if m.Transforms != nil && len(m.Transforms[r]) != m.Width {
			return nil, &mapdoc.MalformedMapError{
				Document: name, Layer: "main", Row: r,
				Reason: fmt.Sprintf("transform row has %d values, expected %d", len(m.Transforms[r]), m.Width),
			}
		}
		decoded := make([]tiled.Key, m.Width)
		for c, base := range row {
			if base > tiled.GIDMask {
				return nil, &mapdoc.MalformedMapError{
					Document: name, Layer: "main", Row: r,
					Reason: fmt.Sprintf("cell %d: identity %d exceeds 29 bits", c, base),
				}
			}
			key := tiled.Key{ID: base}
			if m.Transforms != nil {
				flags, err := transformFlags(m.Transforms[r][c])
				if err != nil {
					return nil, &mapdoc.MalformedMapError{
						Document: name, Layer: "main", Row: r,
						Reason: fmt.Sprintf("cell %d: %v", c, err),
					}
				}
				key.Flags = flags
			}
			decoded[c] = key
		}
		cells[r] = decoded
	}

	return &mapdoc.Document{
		Name:   name,
		Width:  m.Width,
		Height: m.Height,
		Layers: []mapdoc.Layer{{Name: "main", Cells: cells}},
	}, nil
}

// transformFlags converts a [rotation, flipH, flipV] triple back to flip
// flags. The converter writes the rotation as a number and the flips as
// booleans, but 0/1 flips are accepted too.
func transformFlags(triple [3]json.RawMessage) (tiled.Flags, error) {
	var rot int
	if err := json.Unmarshal(triple[0], &rot); err != nil {
		return tiled.Flags{}, fmt.Errorf("rotation %s is not an integer", triple[0])
	}
	fh, err := jsonBool(triple[1])
	if err != nil {
		return tiled.Flags{}, err
	}
	fv, err := jsonBool(triple[2])
	if err != nil {
		return tiled.Flags{}, err
	}
	flags, ok := tiled.FlagsFromTransform(tiled.Transform{Rotation: rot, FlipH: fh, FlipV: fv})
	if !ok {
		return tiled.Flags{}, fmt.Errorf("unrepresentable transform [%d %v %v]", rot, fh, fv)
	}
	return flags, nil
}

func jsonBool(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil && (n == 0 || n == 1) {
		return n == 1, nil
	}
	return false, fmt.Errorf("flip value %s is not a boolean", raw)
}
