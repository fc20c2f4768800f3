package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/config"
	"github.com/imyousuf/TileSage/internal/extractor"
	"github.com/imyousuf/TileSage/internal/mapdoc"
)

func newExtractCmd() *cobra.Command {
	var (
		outputPath string
		minCount   int
		strict     bool
		background int64
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "extract [map files...]",
		Short: "Scan map documents and build/update the adjacency store",
		Long: `Scan map documents and merge their tile adjacency observations into
the adjacency store.

With no arguments, scans the configured maps directory for supported
formats. Documents that fail to parse are skipped (the store gains
nothing from them); pass --strict to abort on the first failure instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			registry := newParserRegistry()

			paths := args
			if len(paths) == 0 {
				paths, err = discoverMaps(cfg.Maps.Dir, registry)
				if err != nil {
					return fmt.Errorf("discover maps: %w", err)
				}
				if len(paths) == 0 {
					return fmt.Errorf("no map documents found in %s", cfg.Maps.Dir)
				}
			}

			storePath := resolveStorePath(cfg, outputPath)
			store, err := openOrCreateStore(storePath)
			if err != nil {
				return err
			}

			bg := cfg.Extract.BackgroundGID
			if cmd.Flags().Changed("background") {
				if background < 0 || background > 0x1FFFFFFF {
					return fmt.Errorf("background GID out of range: %d", background)
				}
				bg = uint32(background)
			}
			useStrict := strict || cfg.Extract.Strict
			useWorkers := workers
			if useWorkers == 0 {
				useWorkers = cfg.Extract.Workers
			}

			ext := extractor.New(extractor.Config{
				Registry:     registry,
				BackgroundID: bg,
				Strict:       useStrict,
				Workers:      useWorkers,
				Verbose:      verbose,
			})

			stats, err := ext.Run(store, paths)
			if err != nil {
				return err
			}

			useMinCount := minCount
			if useMinCount == 0 {
				useMinCount = cfg.Extract.MinCount
			}
			if useMinCount > 1 {
				store = store.Filter(useMinCount)
			}

			if err := store.Save(storePath); err != nil {
				return fmt.Errorf("save adjacency store: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Extracted adjacency from %d document(s)\n", stats.DocumentsMerged)
			if stats.DocumentsFailed > 0 {
				fmt.Fprintf(out, "  Skipped %d malformed document(s):\n", stats.DocumentsFailed)
				for _, e := range stats.Errors {
					fmt.Fprintf(out, "    %s\n", e)
				}
			}
			fmt.Fprintf(out, "  Pairs added:    %d\n", stats.PairsAdded)
			fmt.Fprintf(out, "  Total pairs:    %d\n", store.TotalPairs())
			fmt.Fprintf(out, "  Oriented tiles: %d\n", len(store.Keys()))
			fmt.Fprintf(out, "  Store:          %s\n", storePath)

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "adjacency store path (default from config)")
	cmd.Flags().IntVar(&minCount, "min-count", 0, "drop observations seen fewer than N times")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort on the first malformed document")
	cmd.Flags().Int64Var(&background, "background", 0, "background GID excluded from stats (0 disables)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel document scans (0 = config default)")

	return cmd
}

// discoverMaps walks dir and returns every file whose extension has a
// registered parser, in sorted order for a deterministic merge sequence.
func discoverMaps(dir string, registry *mapdoc.Registry) ([]string, error) {
	supported := make(map[string]bool)
	for _, ext := range registry.SupportedExtensions() {
		supported[ext] = true
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if supported[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
