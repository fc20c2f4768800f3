// Package cli implements the command-line interface for TileSage.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "tilesage",
	Short: "TileSage - Tile adjacency extraction and placement intelligence",
	Long: `TileSage scans tile map documents, learns which tiles appear next to
which (including flipped and rotated orientations), and answers ranked
neighbor queries from the learned adjacency store — the raw material for
wave-function-collapse style map generation and editor autocomplete.

Commands:
  init       Initialize a .tilesage.yaml config file
  extract    Scan map documents and build/update the adjacency store
  query      Query ranked neighbors for a tile
  status     Show adjacency store and catalog stats
  split      Slice a tilesheet into per-tile images
  tag        Tag tile images with categories via an LLM
  convert    Convert a TMX map to editor JSON
  watch      Watch map directories and re-extract on change`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .tilesage.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	bindFlag := func(key, flag string) {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
	bindFlag("config_file", "config")

	// Add subcommands
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSplitCmd())
	rootCmd.AddCommand(newTagCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}
