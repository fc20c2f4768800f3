package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/adjacency"
	"github.com/imyousuf/TileSage/internal/config"
	"github.com/imyousuf/TileSage/internal/extractor"
	"github.com/imyousuf/TileSage/internal/mapdoc"
	"github.com/imyousuf/TileSage/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch map directories and re-extract on change",
		Long: `Watch the configured maps directory and re-run adjacency extraction
every time a map document is created, changed, or removed.

Removal and rename rebuild the store from scratch, since counts can
only ever grow on merge.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			registry := newParserRegistry()

			w := watcher.New(watcher.Config{
				Paths:           []string{cfg.Maps.Dir},
				Extensions:      registry.SupportedExtensions(),
				ExcludePatterns: cfg.Maps.Exclude,
			})
			defer w.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
				cancel()
			}()

			events, err := w.Start(ctx)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}

			out := cmd.OutOrStdout()
			path := resolveStorePath(cfg, storePath)
			fmt.Fprintf(out, "Watching %s for map changes...\n", cfg.Maps.Dir)
			fmt.Fprintf(out, "Adjacency store: %s\n", path)

			// Initial build so the store reflects the current directory
			// before the first change arrives.
			if err := rebuild(cfg, registry, path, out); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "initial extraction: %v\n", err)
			}

			for ev := range events {
				fmt.Fprintf(out, "[%s] %s %s\n", ev.Time.Format("15:04:05"), ev.Op, ev.Path)
				if err := rebuild(cfg, registry, path, out); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "re-extraction: %v\n", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&storePath, "store", "s", "", "adjacency store path (default from config)")

	return cmd
}

// rebuild re-extracts the whole maps directory into a fresh store. Counts
// only grow on merge, so edits and deletions force a from-scratch build
// rather than an incremental one.
func rebuild(cfg *config.Config, registry *mapdoc.Registry, path string, out io.Writer) error {
	paths, err := discoverMaps(cfg.Maps.Dir, registry)
	if err != nil {
		return fmt.Errorf("discover maps: %w", err)
	}

	store := adjacency.NewStore()
	ext := extractor.New(extractor.Config{
		Registry:     registry,
		BackgroundID: cfg.Extract.BackgroundGID,
		Strict:       cfg.Extract.Strict,
		Workers:      cfg.Extract.Workers,
		Verbose:      verbose,
	})

	stats, err := ext.Run(store, paths)
	if err != nil {
		return err
	}

	if cfg.Extract.MinCount > 1 {
		store = store.Filter(cfg.Extract.MinCount)
	}
	if err := store.Save(path); err != nil {
		return fmt.Errorf("save adjacency store: %w", err)
	}

	fmt.Fprintf(out, "  rebuilt: %d document(s), %d pairs", stats.DocumentsMerged, store.TotalPairs())
	if stats.DocumentsFailed > 0 {
		fmt.Fprintf(out, ", %d skipped", stats.DocumentsFailed)
	}
	fmt.Fprintln(out)
	return nil
}
