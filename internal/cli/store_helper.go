package cli

import (
	"fmt"
	"os"

	"github.com/imyousuf/TileSage/internal/adjacency"
	"github.com/imyousuf/TileSage/internal/config"
	"github.com/imyousuf/TileSage/internal/mapdoc"
	"github.com/imyousuf/TileSage/internal/mapdoc/editorjson"
	"github.com/imyousuf/TileSage/internal/mapdoc/tmx"
)

// resolveStorePath picks the adjacency store path: CLI flag first, then
// config, then the built-in default.
func resolveStorePath(cfg *config.Config, flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if cfg.Store.AdjacencyFile != "" {
		return cfg.Store.AdjacencyFile
	}
	return "tile_adjacency.json"
}

// openStore loads the adjacency store at path. A missing file is an error;
// callers that want create-if-absent use openOrCreateStore.
func openStore(path string) (*adjacency.Store, error) {
	store, err := adjacency.Load(path)
	if err != nil {
		return nil, fmt.Errorf("open adjacency store: %w", err)
	}
	return store, nil
}

// openOrCreateStore loads the store at path, or returns a fresh empty
// store when the file does not exist yet.
func openOrCreateStore(path string) (*adjacency.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return adjacency.NewStore(), nil
	}
	return openStore(path)
}

// newParserRegistry builds the map document parser registry with every
// supported format registered.
func newParserRegistry() *mapdoc.Registry {
	registry := mapdoc.NewRegistry()
	registry.Register(tmx.NewParser())
	registry.Register(editorjson.NewParser())
	return registry
}
