package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	// Create a temp directory with .tilesage.yaml
	tmpDir := t.TempDir()

	configContent := `project:
  name: "dungeon-pack"

maps:
  dir: world/maps
  exclude:
    - "**/backup/**"

tileset:
  sheet: art/tilesheet.png
  tiles_dir: art/tiles
  tile_size: 32
  spacing: 0
  cols: 16
  rows: 16
  preview_scale: 4

store:
  adjacency_file: out/adjacency.json
  index_file: out/index.json
  catalog_dir: out/catalog

extract:
  background_gid: 7
  min_count: 3
  strict: true
  workers: 2

oracle:
  provider: vertex-ai
  model: gemini-2.5-flash
  project: my-gcp-project
  location: us-central1
`
	configPath := filepath.Join(tmpDir, DefaultConfigFile+"."+DefaultConfigType)
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Change to the temp directory so Load() discovers .tilesage.yaml
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("failed to restore working directory: %v", err)
		}
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Project.Name != "dungeon-pack" {
		t.Errorf("Project.Name = %q, want %q", cfg.Project.Name, "dungeon-pack")
	}
	if cfg.Maps.Dir != "world/maps" {
		t.Errorf("Maps.Dir = %q, want %q", cfg.Maps.Dir, "world/maps")
	}
	if len(cfg.Maps.Exclude) != 1 || cfg.Maps.Exclude[0] != "**/backup/**" {
		t.Errorf("Maps.Exclude = %v", cfg.Maps.Exclude)
	}

	if cfg.Tileset.Sheet != "art/tilesheet.png" {
		t.Errorf("Tileset.Sheet = %q", cfg.Tileset.Sheet)
	}
	if cfg.Tileset.TileSize != 32 {
		t.Errorf("Tileset.TileSize = %d, want 32", cfg.Tileset.TileSize)
	}
	if cfg.Tileset.Spacing != 0 {
		t.Errorf("Tileset.Spacing = %d, want 0", cfg.Tileset.Spacing)
	}
	if cfg.Tileset.Cols != 16 || cfg.Tileset.Rows != 16 {
		t.Errorf("Tileset grid = %dx%d, want 16x16", cfg.Tileset.Cols, cfg.Tileset.Rows)
	}
	if cfg.Tileset.PreviewScale != 4 {
		t.Errorf("Tileset.PreviewScale = %d, want 4", cfg.Tileset.PreviewScale)
	}

	if cfg.Store.AdjacencyFile != "out/adjacency.json" {
		t.Errorf("Store.AdjacencyFile = %q", cfg.Store.AdjacencyFile)
	}
	if cfg.Store.CatalogDir != "out/catalog" {
		t.Errorf("Store.CatalogDir = %q", cfg.Store.CatalogDir)
	}

	if cfg.Extract.BackgroundGID != 7 {
		t.Errorf("Extract.BackgroundGID = %d, want 7", cfg.Extract.BackgroundGID)
	}
	if cfg.Extract.MinCount != 3 {
		t.Errorf("Extract.MinCount = %d, want 3", cfg.Extract.MinCount)
	}
	if !cfg.Extract.Strict {
		t.Error("Extract.Strict = false, want true")
	}
	if cfg.Extract.Workers != 2 {
		t.Errorf("Extract.Workers = %d, want 2", cfg.Extract.Workers)
	}

	if cfg.Oracle.Provider != "vertex-ai" {
		t.Errorf("Oracle.Provider = %q, want %q", cfg.Oracle.Provider, "vertex-ai")
	}
	if cfg.Oracle.Model != "gemini-2.5-flash" {
		t.Errorf("Oracle.Model = %q", cfg.Oracle.Model)
	}
	if cfg.Oracle.Project != "my-gcp-project" {
		t.Errorf("Oracle.Project = %q", cfg.Oracle.Project)
	}
	if cfg.Oracle.Location != "us-central1" {
		t.Errorf("Oracle.Location = %q", cfg.Oracle.Location)
	}
}

func TestLoadDefaults(t *testing.T) {
	// Load from an empty temp directory (no config file)
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("failed to restore working directory: %v", err)
		}
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Maps.Dir != "maps" {
		t.Errorf("Maps.Dir = %q, want %q (default)", cfg.Maps.Dir, "maps")
	}
	if len(cfg.Maps.Exclude) != 3 {
		t.Errorf("len(Maps.Exclude) = %d, want 3 (defaults)", len(cfg.Maps.Exclude))
	}

	// Default tilesheet geometry: 16px tiles with 1px spacing on a 32x32 grid.
	if cfg.Tileset.TileSize != 16 || cfg.Tileset.Spacing != 1 {
		t.Errorf("tile geometry = %d/%d, want 16/1", cfg.Tileset.TileSize, cfg.Tileset.Spacing)
	}
	if cfg.Tileset.Cols != 32 || cfg.Tileset.Rows != 32 {
		t.Errorf("grid = %dx%d, want 32x32", cfg.Tileset.Cols, cfg.Tileset.Rows)
	}

	if cfg.Store.AdjacencyFile != "tile_adjacency.json" {
		t.Errorf("Store.AdjacencyFile = %q, want %q", cfg.Store.AdjacencyFile, "tile_adjacency.json")
	}

	if cfg.Extract.BackgroundGID != 1 {
		t.Errorf("Extract.BackgroundGID = %d, want 1 (default)", cfg.Extract.BackgroundGID)
	}
	if cfg.Extract.MinCount != 0 {
		t.Errorf("Extract.MinCount = %d, want 0", cfg.Extract.MinCount)
	}

	if cfg.Oracle.Provider != "anthropic" {
		t.Errorf("Oracle.Provider = %q, want %q", cfg.Oracle.Provider, "anthropic")
	}
	if cfg.Oracle.CheckpointInterval != 50 {
		t.Errorf("Oracle.CheckpointInterval = %d, want 50", cfg.Oracle.CheckpointInterval)
	}
}

func validConfig() Config {
	return Config{
		Maps:    MapsConfig{Dir: "maps"},
		Tileset: TilesetConfig{TileSize: 16, Spacing: 1, Cols: 32, Rows: 32},
		Store:   StoreConfig{AdjacencyFile: "tile_adjacency.json"},
		Oracle:  OracleConfig{Provider: "anthropic"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing maps dir",
			mutate:  func(c *Config) { c.Maps.Dir = "" },
			wantErr: true,
			errMsg:  "maps dir is required",
		},
		{
			name:    "zero tile size",
			mutate:  func(c *Config) { c.Tileset.TileSize = 0 },
			wantErr: true,
			errMsg:  "tile_size must be positive",
		},
		{
			name:    "negative spacing",
			mutate:  func(c *Config) { c.Tileset.Spacing = -1 },
			wantErr: true,
			errMsg:  "spacing must not be negative",
		},
		{
			name:    "zero cols",
			mutate:  func(c *Config) { c.Tileset.Cols = 0 },
			wantErr: true,
			errMsg:  "cols and rows must be positive",
		},
		{
			name:    "missing adjacency file",
			mutate:  func(c *Config) { c.Store.AdjacencyFile = "" },
			wantErr: true,
			errMsg:  "adjacency_file is required",
		},
		{
			name:    "negative min count",
			mutate:  func(c *Config) { c.Extract.MinCount = -1 },
			wantErr: true,
			errMsg:  "min_count must not be negative",
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Extract.Workers = -2 },
			wantErr: true,
			errMsg:  "workers must not be negative",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Oracle.Provider = "openai" },
			wantErr: true,
			errMsg:  "provider must be",
		},
		{
			name:    "empty provider allowed",
			mutate:  func(c *Config) { c.Oracle.Provider = "" },
			wantErr: false,
		},
		{
			name: "vertex-ai without project",
			mutate: func(c *Config) {
				c.Oracle.Provider = "vertex-ai"
				c.Oracle.Project = ""
			},
			wantErr: true,
			errMsg:  "project is required",
		},
		{
			name: "valid vertex-ai config",
			mutate: func(c *Config) {
				c.Oracle.Provider = "vertex-ai"
				c.Oracle.Project = "my-project"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() error = nil, want error containing %q", tt.errMsg)
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}
