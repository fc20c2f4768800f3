package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/adjacency"
	"github.com/imyousuf/TileSage/internal/catalog"
	"github.com/imyousuf/TileSage/internal/config"
)

func newStatusCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show adjacency store and catalog stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "TileSage Status\n")
			fmt.Fprintf(out, "===============\n\n")

			path := resolveStorePath(cfg, storePath)
			store, err := openStore(path)
			if err != nil {
				fmt.Fprintf(out, "  Adjacency store: %s (not built yet)\n", path)
			} else {
				fmt.Fprintf(out, "  Adjacency store: %s\n", path)
				fmt.Fprintf(out, "    Source maps:    %d\n", len(store.Metadata.SourceMaps))
				for _, m := range store.Metadata.SourceMaps {
					fmt.Fprintf(out, "      %s\n", m)
				}
				fmt.Fprintf(out, "    Total pairs:    %d\n", store.TotalPairs())
				totals := store.DirectionTotals()
				for _, d := range adjacency.Directions {
					if totals[d] > 0 {
						fmt.Fprintf(out, "      %-7s %d\n", d, totals[d])
					}
				}
				fmt.Fprintf(out, "    Oriented tiles: %d\n", len(store.Keys()))
				fmt.Fprintf(out, "    Tagged tiles:   %d\n", len(store.TileInfo))
				if store.Metadata.MinCountApplied != nil {
					fmt.Fprintf(out, "    Min count:      %d\n", *store.Metadata.MinCountApplied)
				}
			}
			fmt.Fprintln(out)

			// Catalog stats are optional; the catalog only exists after
			// split+tag has run.
			if cfg.Store.CatalogDir != "" {
				if _, statErr := os.Stat(cfg.Store.CatalogDir); statErr == nil {
					cat, err := catalog.Open(cfg.Store.CatalogDir)
					if err != nil {
						return fmt.Errorf("open catalog: %w", err)
					}
					defer cat.Close()

					stats, err := cat.Stats(context.Background())
					if err != nil {
						return fmt.Errorf("catalog stats: %w", err)
					}

					fmt.Fprintf(out, "  Tile catalog: %s\n", cfg.Store.CatalogDir)
					fmt.Fprintf(out, "    Tiles: %d\n", stats.TileCount)
					if len(stats.ByCategory) > 0 {
						fmt.Fprintf(out, "    By category:\n")
						for _, c := range sortedCategories(stats.ByCategory) {
							fmt.Fprintf(out, "      %-20s %d\n", c, stats.ByCategory[c])
						}
					}
					fmt.Fprintln(out)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&storePath, "store", "s", "", "adjacency store path (default from config)")

	return cmd
}

func sortedCategories(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
