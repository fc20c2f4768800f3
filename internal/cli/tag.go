package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/adjacency"
	"github.com/imyousuf/TileSage/internal/catalog"
	"github.com/imyousuf/TileSage/internal/config"
	// Register LLM providers.
	_ "github.com/imyousuf/TileSage/internal/llm"
	"github.com/imyousuf/TileSage/internal/tagger"
	"github.com/imyousuf/TileSage/internal/tileset"
	"github.com/imyousuf/TileSage/pkg/llm"
)

func newTagCmd() *cobra.Command {
	var (
		indexPath string
		storePath string
		provider  string
		model     string
		interval  int
		reset     bool
		skipMerge bool
	)

	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Tag tile images with categories via an LLM",
		Long: `Ask an LLM oracle to categorize and describe every tile image in the
tile index, storing the results in the tile catalog.

Progress is checkpointed; an interrupted run resumes where it left off.
Tagged categories are also merged into the adjacency store's tile_info
when the store exists (disable with --no-merge).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			idxPath := indexPath
			if idxPath == "" {
				idxPath = cfg.Store.IndexFile
			}
			index, err := tileset.ReadIndex(idxPath)
			if err != nil {
				return fmt.Errorf("read tile index: %w (run 'tilesage split' first)", err)
			}

			useProvider := provider
			if useProvider == "" {
				useProvider = cfg.Oracle.Provider
			}
			useModel := model
			if useModel == "" {
				useModel = cfg.Oracle.Model
			}

			client, err := llm.NewClient(llm.Config{
				Provider: useProvider,
				Model:    useModel,
				APIKey:   os.Getenv("ANTHROPIC_API_KEY"),
				Project:  cfg.Oracle.Project,
				Location: cfg.Oracle.Location,
			})
			if err != nil {
				return fmt.Errorf("create LLM client: %w", err)
			}
			defer client.Close()

			cat, err := catalog.Open(cfg.Store.CatalogDir)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer cat.Close()

			useInterval := interval
			if useInterval == 0 {
				useInterval = cfg.Oracle.CheckpointInterval
			}

			tilesDir := filepath.Dir(idxPath)
			t := tagger.New(tagger.Config{
				Client:             client,
				TilesDir:           tilesDir,
				CheckpointPath:     filepath.Join(tilesDir, ".tag_checkpoint.json"),
				CheckpointInterval: useInterval,
				Reset:              reset,
			})

			// Interrupts flush the checkpoint instead of losing progress.
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			stats, err := t.Run(ctx, index, cat)
			if err != nil && ctx.Err() == nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tagged %d tile(s), skipped %d already tagged\n", stats.Tagged, stats.Skipped)
			if len(stats.Errors) > 0 {
				fmt.Fprintf(out, "  %d tile(s) failed:\n", len(stats.Errors))
				for _, e := range stats.Errors {
					fmt.Fprintf(out, "    %s\n", e)
				}
			}
			if ctx.Err() != nil {
				fmt.Fprintln(out, "Interrupted; progress checkpointed. Re-run to resume.")
				return nil
			}

			if !skipMerge {
				if err := mergeTileInfo(cmd, cfg, cat, storePath); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&indexPath, "index", "", "tile index path (default from config)")
	cmd.Flags().StringVarP(&storePath, "store", "s", "", "adjacency store path (default from config)")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: anthropic or vertex-ai (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "model identifier (default from config)")
	cmd.Flags().IntVar(&interval, "checkpoint-interval", 0, "tiles between checkpoint saves (default from config)")
	cmd.Flags().BoolVar(&reset, "reset", false, "discard any existing checkpoint and start over")
	cmd.Flags().BoolVar(&skipMerge, "no-merge", false, "do not merge categories into the adjacency store")

	return cmd
}

// mergeTileInfo copies catalog categories into the adjacency store's
// tile_info. Only identities the store has observed are touched; a store
// that does not exist yet is skipped silently.
func mergeTileInfo(cmd *cobra.Command, cfg *config.Config, cat *catalog.Store, storePath string) error {
	path := resolveStorePath(cfg, storePath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	store, err := openStore(path)
	if err != nil {
		return err
	}

	observed := make(map[uint32]bool)
	for _, key := range store.Keys() {
		observed[key.ID] = true
	}

	updated := 0
	err = cat.All(context.Background(), func(tile *catalog.Tile) bool {
		if !observed[tile.GID] || tile.Category == "" {
			return true
		}
		store.SetTileInfo(tile.GID, adjacency.TileInfo{
			Category:    tile.Category,
			Description: tile.Description,
		})
		updated++
		return true
	})
	if err != nil {
		return fmt.Errorf("walk catalog: %w", err)
	}

	if updated == 0 {
		return nil
	}
	if err := store.Save(path); err != nil {
		return fmt.Errorf("save adjacency store: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Merged %d tile categories into %s\n", updated, path)
	return nil
}
