// Package catalog persists per-tile metadata (sheet position, category,
// description, edge classes) in an embedded BadgerDB. The adjacency
// matcher never reads it; it exists to label query output and to populate
// the tile_info section of the persisted rule set.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes for the BadgerDB key scheme.
const (
	prefixTile   = "t:"
	prefixIdxCat = "idx:cat:"
)

// Tile is one catalog record, keyed by its tile identity (GID).
type Tile struct {
	GID         uint32            `json:"gid"`
	Label       string            `json:"label,omitempty"` // e.g. "tile_5_9"
	Row         int               `json:"row"`
	Col         int               `json:"col"`
	PixelX      int               `json:"pixel_x"`
	PixelY      int               `json:"pixel_y"`
	Filename    string            `json:"filename,omitempty"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Edges       map[string]string `json:"edges,omitempty"` // side -> edge class
}

// Stats summarizes catalog contents.
type Stats struct {
	TileCount  int64
	ByCategory map[string]int64
}

// Store is a BadgerDB-backed tile catalog.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a catalog at dbPath.
func Open(dbPath string) (*Store, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // suppress badger logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	return &Store{db: db}, nil
}

// tileKey returns the primary key for a tile. GIDs are zero-padded so
// prefix scans iterate in numeric order.
func tileKey(gid uint32) []byte {
	return []byte(fmt.Sprintf("%s%010d", prefixTile, gid))
}

// indexCatKey returns the secondary index key for category lookup.
func indexCatKey(category string, gid uint32) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", prefixIdxCat, category, gid))
}

// Put inserts or replaces a tile record, maintaining the category index.
func (s *Store) Put(_ context.Context, tile *Tile) error {
	data, err := json.Marshal(tile)
	if err != nil {
		return fmt.Errorf("marshal tile %d: %w", tile.GID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		// Clean up a stale category index entry if the category changed.
		if old, err := getTileInTxn(txn, tile.GID); err == nil {
			if old.Category != "" && old.Category != tile.Category {
				_ = txn.Delete(indexCatKey(old.Category, tile.GID))
			}
		}
		if err := txn.Set(tileKey(tile.GID), data); err != nil {
			return err
		}
		if tile.Category != "" {
			return txn.Set(indexCatKey(tile.Category, tile.GID), nil)
		}
		return nil
	})
}

// Get retrieves a tile record by identity.
func (s *Store) Get(_ context.Context, gid uint32) (*Tile, error) {
	var tile *Tile
	err := s.db.View(func(txn *badger.Txn) error {
		t, err := getTileInTxn(txn, gid)
		if err != nil {
			return err
		}
		tile = t
		return nil
	})
	return tile, err
}

func getTileInTxn(txn *badger.Txn, gid uint32) (*Tile, error) {
	item, err := txn.Get(tileKey(gid))
	if err != nil {
		return nil, fmt.Errorf("get tile %d: %w", gid, err)
	}
	var tile Tile
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &tile)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal tile %d: %w", gid, err)
	}
	return &tile, nil
}

// ByCategory returns all tiles with the given category, in GID order.
func (s *Store) ByCategory(_ context.Context, category string) ([]*Tile, error) {
	var gids []uint32
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixIdxCat + category + ":")
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			if idx := strings.LastIndex(key, ":"); idx >= 0 && idx < len(key)-1 {
				gid, err := strconv.ParseUint(key[idx+1:], 10, 32)
				if err != nil {
					continue // malformed index entry; primary record is authoritative
				}
				gids = append(gids, uint32(gid))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tiles := make([]*Tile, 0, len(gids))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, gid := range gids {
			t, err := getTileInTxn(txn, gid)
			if err != nil {
				continue // index entry for deleted tile; skip
			}
			tiles = append(tiles, t)
		}
		return nil
	})
	return tiles, err
}

// All iterates over every tile record in GID order. Return false from fn
// to stop iteration.
func (s *Store) All(_ context.Context, fn func(*Tile) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefixTile)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.Valid(); it.Next() {
			item := it.Item()
			var tile Tile
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &tile)
			})
			if err != nil {
				continue
			}
			if !fn(&tile) {
				break
			}
		}
		return nil
	})
}

// Stats returns aggregate statistics about the catalog.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByCategory: make(map[string]int64)}
	err := s.All(ctx, func(t *Tile) bool {
		stats.TileCount++
		if t.Category != "" {
			stats.ByCategory[t.Category]++
		}
		return true
	})
	return stats, err
}

// Categories returns the distinct categories present, sorted.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	cats := make([]string, 0, len(stats.ByCategory))
	for c := range stats.ByCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats, nil
}

// Close releases resources held by the store.
func (s *Store) Close() error {
	return s.db.Close()
}
