package adjacency

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/imyousuf/TileSage/internal/tiled"
)

// TileInfo is display metadata for one tile identity. It is carried for
// the convenience of query consumers and never consulted by the matcher.
type TileInfo struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Metadata describes the provenance of a persisted store.
type Metadata struct {
	SourceMaps      []string `json:"source_maps"`
	MinCountApplied *int     `json:"min_count_applied"`
	TotalPairs      int      `json:"total_adjacency_pairs"`
	UniqueTiles     int      `json:"unique_tiles_observed"`
}

// Store is the mergeable adjacency rule set: oriented tile key ->
// direction -> neighbor key -> observation count, plus per-identity tile
// metadata. Counts only ever grow on merge.
type Store struct {
	Metadata Metadata
	TileInfo map[uint32]TileInfo
	counts   Deltas
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		TileInfo: make(map[uint32]TileInfo),
		counts:   NewDeltas(),
	}
}

// CorruptStoreError reports persisted store data that fails its grammar or
// type checks. Load never coerces or drops such data.
type CorruptStoreError struct {
	Path   string
	Reason string
}

func (e *CorruptStoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("corrupt adjacency store %s: %s", e.Path, e.Reason)
	}
	return "corrupt adjacency store: " + e.Reason
}

// Merge folds deltas into the store, adding each count to the existing one
// (default 0). Unrelated entries are never touched. Merging the same
// deltas twice doubles those counts; deduplicating re-runs is the caller's
// concern.
func (s *Store) Merge(deltas Deltas) {
	for src, dirs := range deltas {
		for dir, neighbors := range dirs {
			for dst, n := range neighbors {
				s.counts.add(src, dir, dst, n)
			}
		}
	}
}

// Count returns the stored count for one triple, 0 if absent.
func (s *Store) Count(src tiled.Key, dir Direction, dst tiled.Key) int {
	return s.counts.Count(src, dir, dst)
}

// TotalPairs returns the sum of all stored observation counts.
func (s *Store) TotalPairs() int {
	return s.counts.Total()
}

// DirectionTotals returns the sum of observation counts per direction.
func (s *Store) DirectionTotals() map[Direction]int {
	totals := make(map[Direction]int, len(Directions))
	for _, dirs := range s.counts {
		for dir, neighbors := range dirs {
			for _, n := range neighbors {
				totals[dir] += n
			}
		}
	}
	return totals
}

// Keys returns all source keys with at least one observation, sorted by
// their canonical serialization.
func (s *Store) Keys() []tiled.Key {
	keys := make([]tiled.Key, 0, len(s.counts))
	for k := range s.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// AddSourceMap records a document name in the metadata, once.
func (s *Store) AddSourceMap(name string) {
	for _, m := range s.Metadata.SourceMaps {
		if m == name {
			return
		}
	}
	s.Metadata.SourceMaps = append(s.Metadata.SourceMaps, name)
}

// SetTileInfo records display metadata for a tile identity.
func (s *Store) SetTileInfo(id uint32, info TileInfo) {
	s.TileInfo[id] = info
}

// Neighbor is one ranked query result.
type Neighbor struct {
	Key   tiled.Key
	Count int
}

// Query returns up to topN neighbors of key in the given direction, sorted
// by descending count with ties broken by ascending key serialization.
// Unknown keys and empty directions yield an empty slice, not an error.
func (s *Store) Query(key tiled.Key, dir Direction, topN int) []Neighbor {
	neighbors := s.counts[key][dir]
	if len(neighbors) == 0 || topN <= 0 {
		return nil
	}
	ranked := make([]Neighbor, 0, len(neighbors))
	for k, n := range neighbors {
		ranked = append(ranked, Neighbor{Key: k, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key.String() < ranked[j].Key.String()
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Filter returns a copy of the store containing only triples with count >=
// minCount. The receiver is left untouched. Tile metadata is pruned to the
// identities still observed, and min_count_applied records the filter.
func (s *Store) Filter(minCount int) *Store {
	out := NewStore()
	out.Metadata.SourceMaps = append([]string(nil), s.Metadata.SourceMaps...)

	observed := make(map[uint32]struct{})
	for src, dirs := range s.counts {
		for dir, neighbors := range dirs {
			for dst, n := range neighbors {
				if n < minCount {
					continue
				}
				out.counts.add(src, dir, dst, n)
				observed[src.ID] = struct{}{}
				observed[dst.ID] = struct{}{}
			}
		}
	}
	for id, info := range s.TileInfo {
		if _, ok := observed[id]; ok {
			out.TileInfo[id] = info
		}
	}
	if minCount > 1 {
		mc := minCount
		out.Metadata.MinCountApplied = &mc
	} else {
		out.Metadata.MinCountApplied = s.Metadata.MinCountApplied
	}
	return out
}

// diskStore is the on-disk JSON shape.
type diskStore struct {
	Metadata  Metadata                                     `json:"metadata"`
	TileInfo  map[string]TileInfo                          `json:"tile_info"`
	Adjacency map[string]map[string]map[string]json.Number `json:"adjacency"`
}

// MarshalJSON serializes the full store. Neighbor maps are emitted with
// string keys, so encoding/json orders everything lexically and repeated
// serializations are byte-identical.
func (s *Store) MarshalJSON() ([]byte, error) {
	disk := diskStore{
		Metadata:  s.Metadata,
		TileInfo:  make(map[string]TileInfo, len(s.TileInfo)),
		Adjacency: make(map[string]map[string]map[string]json.Number, len(s.counts)),
	}
	disk.Metadata.TotalPairs = s.TotalPairs()
	disk.Metadata.UniqueTiles = len(s.counts)
	if disk.Metadata.SourceMaps == nil {
		disk.Metadata.SourceMaps = []string{}
	}
	for id, info := range s.TileInfo {
		disk.TileInfo[fmt.Sprintf("%d", id)] = info
	}
	for src, dirs := range s.counts {
		dirOut := make(map[string]map[string]json.Number, len(dirs))
		for dir, neighbors := range dirs {
			if len(neighbors) == 0 {
				continue
			}
			out := make(map[string]json.Number, len(neighbors))
			for dst, n := range neighbors {
				out[dst.String()] = json.Number(fmt.Sprintf("%d", n))
			}
			dirOut[string(dir)] = out
		}
		if len(dirOut) > 0 {
			disk.Adjacency[src.String()] = dirOut
		}
	}
	return json.MarshalIndent(disk, "", "  ")
}

// UnmarshalJSON loads a persisted store, rejecting anything that fails the
// key grammar, direction names or integer count checks.
func (s *Store) UnmarshalJSON(data []byte) error {
	var disk diskStore
	if err := json.Unmarshal(data, &disk); err != nil {
		return &CorruptStoreError{Reason: err.Error()}
	}

	loaded := NewStore()
	loaded.Metadata = disk.Metadata
	for idStr, info := range disk.TileInfo {
		key, err := tiled.ParseKey(idStr)
		if err != nil || !key.Flags.None() {
			return &CorruptStoreError{Reason: fmt.Sprintf("tile_info key %q is not a bare identity", idStr)}
		}
		loaded.TileInfo[key.ID] = info
	}
	for srcStr, dirs := range disk.Adjacency {
		src, err := tiled.ParseKey(srcStr)
		if err != nil {
			return &CorruptStoreError{Reason: err.Error()}
		}
		for dirStr, neighbors := range dirs {
			dir, err := ParseDirection(dirStr)
			if err != nil {
				return &CorruptStoreError{Reason: err.Error()}
			}
			for dstStr, raw := range neighbors {
				dst, err := tiled.ParseKey(dstStr)
				if err != nil {
					return &CorruptStoreError{Reason: err.Error()}
				}
				n, err := raw.Int64()
				if err != nil {
					return &CorruptStoreError{Reason: fmt.Sprintf("count for %s %s %s: %q is not an integer", srcStr, dirStr, dstStr, raw)}
				}
				if n < 0 {
					return &CorruptStoreError{Reason: fmt.Sprintf("count for %s %s %s is negative", srcStr, dirStr, dstStr)}
				}
				loaded.counts.add(src, dir, dst, int(n))
			}
		}
	}

	*s = *loaded
	return nil
}

// Save writes the store to path. The write goes through a temp file and
// rename, so readers never observe a half-written store.
func (s *Store) Save(path string) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("serialize adjacency store: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write adjacency store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write adjacency store: %w", err)
	}
	return nil
}

// Load reads a persisted store from path. A missing file is an error here;
// callers that want start-from-empty semantics must check for existence
// explicitly, so a damaged store is never silently reset.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read adjacency store: %w", err)
	}
	s := NewStore()
	if err := s.UnmarshalJSON(data); err != nil {
		if ce, ok := err.(*CorruptStoreError); ok {
			ce.Path = path
		}
		return nil, err
	}
	return s, nil
}
