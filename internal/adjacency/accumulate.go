package adjacency

import (
	"github.com/imyousuf/TileSage/internal/mapdoc"
	"github.com/imyousuf/TileSage/internal/tiled"
)

// Deltas holds the observation counts produced by one accumulation pass:
// source key -> direction -> neighbor key -> count.
type Deltas map[tiled.Key]map[Direction]map[tiled.Key]int

// NewDeltas creates an empty delta set.
func NewDeltas() Deltas {
	return make(Deltas)
}

// add increments one (source, direction, target) observation.
func (d Deltas) add(src tiled.Key, dir Direction, dst tiled.Key, n int) {
	dirs, ok := d[src]
	if !ok {
		dirs = make(map[Direction]map[tiled.Key]int)
		d[src] = dirs
	}
	neighbors, ok := dirs[dir]
	if !ok {
		neighbors = make(map[tiled.Key]int)
		dirs[dir] = neighbors
	}
	neighbors[dst] += n
}

// Count returns the observation count for one triple, 0 if absent.
func (d Deltas) Count(src tiled.Key, dir Direction, dst tiled.Key) int {
	return d[src][dir][dst]
}

// Total returns the sum of all observation counts.
func (d Deltas) Total() int {
	total := 0
	for _, dirs := range d {
		for _, neighbors := range dirs {
			for _, n := range neighbors {
				total += n
			}
		}
	}
	return total
}

// Accumulator walks decoded map grids and aggregates directional
// observations. It is pure per document: accumulating the same grid twice
// into fresh deltas yields identical counts.
type Accumulator struct {
	// BackgroundID is the filler tile identity excluded from statistics.
	// It neighbors almost everything, so counting it would pollute the
	// rule set. 0 disables the exclusion (identity 0 is always excluded
	// as the empty sentinel).
	BackgroundID uint32
}

// skip reports whether a cell is excluded from statistics entirely.
func (a *Accumulator) skip(k tiled.Key) bool {
	return k.ID == 0 || (a.BackgroundID != 0 && k.ID == a.BackgroundID)
}

// Accumulate scans every layer of doc and folds its observations into
// deltas, which may already hold observations from earlier documents.
// Only Right and Bottom are walked to avoid double-counting a pair; the
// symmetric Left/Top observations are inserted in the same step so a query
// in any direction from either tile is answerable after one pass.
func (a *Accumulator) Accumulate(doc *mapdoc.Document, deltas Deltas) Deltas {
	if deltas == nil {
		deltas = NewDeltas()
	}
	for _, layer := range doc.Layers {
		a.accumulateLayer(layer, deltas)
	}
	return deltas
}

func (a *Accumulator) accumulateLayer(layer mapdoc.Layer, deltas Deltas) {
	height := len(layer.Cells)
	for r := 0; r < height; r++ {
		row := layer.Cells[r]
		for c := 0; c < len(row); c++ {
			src := row[c]
			if a.skip(src) {
				continue
			}
			if c+1 < len(row) {
				if dst := row[c+1]; !a.skip(dst) {
					deltas.add(src, Right, dst, 1)
					deltas.add(dst, Left, src, 1)
				}
			}
			if r+1 < height && c < len(layer.Cells[r+1]) {
				if dst := layer.Cells[r+1][c]; !a.skip(dst) {
					deltas.add(src, Bottom, dst, 1)
					deltas.add(dst, Top, src, 1)
				}
			}
		}
	}
}
