// Package config handles configuration loading and validation for TileSage.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".tilesage"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
)

// Config holds all configuration for TileSage.
type Config struct {
	// Project contains project metadata.
	Project ProjectConfig `mapstructure:"project" yaml:"project"`
	// Maps contains map document discovery configuration.
	Maps MapsConfig `mapstructure:"maps" yaml:"maps"`
	// Tileset contains tilesheet geometry configuration.
	Tileset TilesetConfig `mapstructure:"tileset" yaml:"tileset"`
	// Store contains output path configuration.
	Store StoreConfig `mapstructure:"store" yaml:"store"`
	// Extract contains adjacency extraction configuration.
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	// Oracle contains LLM tagging configuration.
	Oracle OracleConfig `mapstructure:"oracle" yaml:"oracle"`
}

// ProjectConfig holds project metadata.
type ProjectConfig struct {
	// Name is the project name.
	Name string `mapstructure:"name" yaml:"name"`
}

// MapsConfig holds map document discovery configuration.
type MapsConfig struct {
	// Dir is the directory scanned for map documents.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Exclude lists glob patterns to skip when scanning and watching.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

// TilesetConfig holds tilesheet geometry configuration.
type TilesetConfig struct {
	// Sheet is the path to the packed tilesheet image.
	Sheet string `mapstructure:"sheet" yaml:"sheet"`
	// TilesDir is the directory where split tile images are written.
	TilesDir string `mapstructure:"tiles_dir" yaml:"tiles_dir"`
	// TileSize is the tile edge length in pixels.
	TileSize int `mapstructure:"tile_size" yaml:"tile_size"`
	// Spacing is the gap between tiles in pixels.
	Spacing int `mapstructure:"spacing" yaml:"spacing"`
	// Cols is the number of tile columns in the sheet.
	Cols int `mapstructure:"cols" yaml:"cols"`
	// Rows is the number of tile rows in the sheet.
	Rows int `mapstructure:"rows" yaml:"rows"`
	// PreviewScale writes an additional scaled copy of each tile when > 1.
	PreviewScale int `mapstructure:"preview_scale" yaml:"preview_scale"`
}

// StoreConfig holds output path configuration.
type StoreConfig struct {
	// AdjacencyFile is the path to the adjacency store JSON file.
	AdjacencyFile string `mapstructure:"adjacency_file" yaml:"adjacency_file"`
	// IndexFile is the path to the split tile index JSON file.
	IndexFile string `mapstructure:"index_file" yaml:"index_file"`
	// CatalogDir is the directory holding the tile catalog database.
	CatalogDir string `mapstructure:"catalog_dir" yaml:"catalog_dir"`
}

// ExtractConfig holds adjacency extraction configuration.
type ExtractConfig struct {
	// BackgroundGID is the placeholder tile identity excluded from statistics.
	BackgroundGID uint32 `mapstructure:"background_gid" yaml:"background_gid"`
	// MinCount drops adjacency observations below this count when > 1.
	MinCount int `mapstructure:"min_count" yaml:"min_count"`
	// Strict aborts the run on the first malformed document.
	Strict bool `mapstructure:"strict" yaml:"strict"`
	// Workers bounds concurrent document scans (0 means one per CPU).
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// OracleConfig holds LLM tagging configuration.
type OracleConfig struct {
	// Provider is the LLM provider (anthropic or vertex-ai).
	Provider string `mapstructure:"provider" yaml:"provider"`
	// Model is the model identifier.
	Model string `mapstructure:"model" yaml:"model"`
	// Project is the GCP project ID (used when Provider is "vertex-ai").
	Project string `mapstructure:"project" yaml:"project"`
	// Location is the GCP region (used when Provider is "vertex-ai", e.g. "us-central1").
	Location string `mapstructure:"location" yaml:"location"`
	// CheckpointInterval is the number of tiles tagged between checkpoint saves.
	CheckpointInterval int `mapstructure:"checkpoint_interval" yaml:"checkpoint_interval"`
}

// Load loads configuration from file, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Check if a specific config file was set via CLI flag (stored in global viper)
	globalViper := viper.GetViper()
	if configFile := globalViper.GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigFile)
		v.SetConfigType(DefaultConfigType)
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix("TILESAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Maps.Dir == "" {
		return fmt.Errorf("maps dir is required")
	}

	if c.Tileset.TileSize <= 0 {
		return fmt.Errorf("tileset tile_size must be positive, got %d", c.Tileset.TileSize)
	}
	if c.Tileset.Spacing < 0 {
		return fmt.Errorf("tileset spacing must not be negative, got %d", c.Tileset.Spacing)
	}
	if c.Tileset.Cols <= 0 || c.Tileset.Rows <= 0 {
		return fmt.Errorf("tileset cols and rows must be positive, got %dx%d", c.Tileset.Cols, c.Tileset.Rows)
	}

	if c.Store.AdjacencyFile == "" {
		return fmt.Errorf("store adjacency_file is required")
	}

	if c.Extract.MinCount < 0 {
		return fmt.Errorf("extract min_count must not be negative, got %d", c.Extract.MinCount)
	}
	if c.Extract.Workers < 0 {
		return fmt.Errorf("extract workers must not be negative, got %d", c.Extract.Workers)
	}

	if c.Oracle.Provider != "" && c.Oracle.Provider != "anthropic" && c.Oracle.Provider != "vertex-ai" {
		return fmt.Errorf("oracle provider must be 'anthropic' or 'vertex-ai', got %q", c.Oracle.Provider)
	}

	if c.Oracle.Provider == "vertex-ai" && c.Oracle.Project == "" {
		return fmt.Errorf("oracle project is required when provider is 'vertex-ai'")
	}

	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("project.name", "")

	v.SetDefault("maps.dir", "maps")
	v.SetDefault("maps.exclude", []string{
		"**/.git/**",
		"**/backup/**",
		"**/*.bak",
	})

	v.SetDefault("tileset.sheet", "tileset.png")
	v.SetDefault("tileset.tiles_dir", "tiles")
	v.SetDefault("tileset.tile_size", 16)
	v.SetDefault("tileset.spacing", 1)
	v.SetDefault("tileset.cols", 32)
	v.SetDefault("tileset.rows", 32)
	v.SetDefault("tileset.preview_scale", 1)

	v.SetDefault("store.adjacency_file", "tile_adjacency.json")
	v.SetDefault("store.index_file", "tiles/index.json")
	v.SetDefault("store.catalog_dir", ".tilesage-catalog")

	v.SetDefault("extract.background_gid", 1)
	v.SetDefault("extract.min_count", 0)
	v.SetDefault("extract.strict", false)
	v.SetDefault("extract.workers", 0)

	v.SetDefault("oracle.provider", "anthropic")
	v.SetDefault("oracle.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("oracle.checkpoint_interval", 50)
}
